package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jcoglan/unsafe-sjr/internal/metrics"
	"github.com/jcoglan/unsafe-sjr/internal/middleware"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// メモ
	NoteService NoteServiceInterface

	// 運用
	HealthChecker repository.HealthChecker
	Metrics       metrics.MetricsCollector // nilの場合は記録しない
	Gatherer      prometheus.Gatherer      // nilの場合は /metrics を公開しない
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS
//	  /login:  FetchMetadata → RateLimit(Login)
//	  保護対象: FetchMetadata → Session → RateLimit(General) → RateLimit(NoteCreate) → Forgery
//
// 表現形式の選択はハンドラー内で行うため、認可の結果は拡張子やAcceptに依存しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// nilのインターフェース値をそのまま渡さないように変換する
	var (
		rejections middleware.RejectionRecorder
		loginRec   LoginRecorder
		noteRec    NoteRecorder
		statusRec  middleware.StatusRecorder
	)
	if deps.Metrics != nil {
		rejections = deps.Metrics
		loginRec = deps.Metrics
		noteRec = deps.Metrics
		statusRec = deps.Metrics
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if statusRec != nil {
		r.Use(middleware.NewMetricsMiddleware(statusRec))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.CORSAllowedOrigin != "" {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, loginRec)
	noteHandler := NewNoteHandler(deps.NoteService, noteRec)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker).Check)
	}
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewFetchMetadataMiddleware(rejections))

		// ログイン（トップレベルナビゲーションのみ許可される）
		r.With(deps.RateLimiter.LoginMiddleware()).Get("/login/{username}", authHandler.Login)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionResolver, rejections))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/session", authHandler.Session)

			// メモ（非安全メソッドは作成レート制限と偽造対策トークン検証を通す）
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.NoteCreateMiddleware())
				r.Use(middleware.NewForgeryMiddleware(rejections))

				r.Get("/notes", noteHandler.List)
				r.Get("/notes.{format}", noteHandler.List)
				r.Post("/notes", noteHandler.Create)
				r.Post("/notes.{format}", noteHandler.Create)
			})
		})
	})

	return r
}
