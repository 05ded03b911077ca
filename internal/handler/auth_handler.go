// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jcoglan/unsafe-sjr/internal/auth"
	"github.com/jcoglan/unsafe-sjr/internal/middleware"
	"github.com/jcoglan/unsafe-sjr/internal/model"
)

// loginRedirectPath はログイン後のリダイレクト先。
const loginRedirectPath = "/notes"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username string) (*auth.LoginResult, error)
}

// LoginRecorder はログインを記録するインターフェース。
type LoginRecorder interface {
	RecordLogin(newUser bool)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
}

// AuthHandler はログインとセッション情報のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// Login はユーザー名でログインし、セッションCookieを発行する。
// 未登録のユーザー名なら新規作成する。パスワードは持たない。
// GET /login/{username}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("username is malformed"))
		return
	}

	result, err := h.service.Login(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin(result.Created)
	}
	// セッションCookieを設定（HTTP Only）。有効期限は持たない
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, loginRedirectPath, http.StatusSeeOther)
}

type sessionUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type sessionResponse struct {
	User         sessionUserResponse `json:"user"`
	ForgeryToken string              `json:"forgery_token"`
}

// Session は現在のユーザーとリクエスト偽造対策トークンを返す。
// GET /session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
		return
	}
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User: sessionUserResponse{
			ID:       user.ID,
			Username: user.Username,
		},
		ForgeryToken: session.ForgeryToken,
	})
}

// usernameParam はパスからユーザー名を取り出す。
// chiはRawPathがあればそれでルーティングするため、その場合のみデコードする。
func usernameParam(r *http.Request) (string, error) {
	param := chi.URLParam(r, "username")
	if r.URL.RawPath == "" {
		return param, nil
	}
	return url.PathUnescape(param)
}
