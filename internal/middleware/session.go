// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userContextKey    = contextKey("user")
	sessionContextKey = contextKey("session")
)

// SessionResolver はセッショントークンからユーザーとセッションを解決するインターフェース。
// auth.Serviceがこれを満たす。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, *model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 認証済みのユーザーとセッションをリクエストコンテキストに注入するミドルウェアを返す。
// セッションが解決できない場合は403、ストアに到達できない場合は503を返し、
// 後続のハンドラーは呼び出さない。Cookie以外（Origin、メソッド等）は見ない。
func NewSessionMiddleware(resolver SessionResolver, rec RejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}

			user, session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStorageUnavailableError(err))
				return
			}
			if user == nil || session == nil {
				recordRejection(rec, RejectUnauthenticated)
				slog.Warn("unauthenticated request rejected",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("cookie_present", token != ""),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
				return
			}

			annotateRequest(r.Context(), func(info *requestInfo) { info.userID = user.ID })

			ctx := ContextWithPrincipal(r.Context(), user, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithPrincipal はコンテキストにユーザーとセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, user *model.User, session *model.Session) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, sessionContextKey, session)
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok && user != nil
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	return session, ok && session != nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, ok := UserFromContext(ctx)
	if !ok || user.ID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return user.ID, nil
}
