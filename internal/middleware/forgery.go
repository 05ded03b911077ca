package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jcoglan/unsafe-sjr/internal/auth"
	"github.com/jcoglan/unsafe-sjr/internal/model"
)

const (
	// ForgeryTokenHeader はリクエスト偽造対策トークンを読み取るヘッダー名。
	ForgeryTokenHeader = "X-CSRF-Token"

	// ForgeryTokenField はフォーム送信時にトークンを読み取るフィールド名。
	ForgeryTokenField = "authenticity_token"
)

// NewForgeryMiddleware はセッションに紐づく偽造対策トークンを検証するミドルウェアを返す。
// 安全なメソッド（GET, HEAD, OPTIONS）は検証をスキップする。
// それ以外はヘッダー、次にフォームフィールドからトークンを読み取り、
// 欠落・不一致の場合は422を返して後続のハンドラーを呼び出さない。
// SessionMiddlewareの後に配置すること。
func NewForgeryMiddleware(rec RejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := SessionFromContext(r.Context())
			if !ok {
				recordRejection(rec, RejectUnauthenticated)
				WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
				return
			}

			presented := r.Header.Get(ForgeryTokenHeader)
			source := "header"
			if presented == "" {
				presented = r.PostFormValue(ForgeryTokenField)
				source = "form"
			}

			if !auth.ValidForgeryToken(session, presented) {
				recordRejection(rec, RejectForgeryToken)
				reason := "token mismatch"
				if presented == "" {
					reason = "missing token"
				}
				slog.Warn("forgery token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("reason", reason),
					slog.String("source", source),
				)
				WriteErrorResponse(w, http.StatusUnprocessableEntity, model.NewForgeryTokenInvalidError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
