package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

var (
	navigationalModes = map[string]bool{
		"navigate":        true,
		"nested-navigate": true,
	}
	navigationalDests = map[string]bool{
		"document":        true,
		"nested-document": true,
	}
)

// NewFetchMetadataMiddleware はFetch Metadataヘッダーによるリソース分離ミドルウェアを返す。
//
// Sec-Fetch-Site が cross-site のリクエストは、GET/HEADによるトップレベルの
// ページ遷移を除いて403で拒否する。<script src> による読み込みは
// Sec-Fetch-Dest: script となるため常に拒否される。
// Fetch Metadataに対応しないブラウザ（ヘッダーなし）は通過させる。
func NewFetchMetadataMiddleware(rec RejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedByResourcePolicy(r) {
				next.ServeHTTP(w, r)
				return
			}

			recordRejection(rec, RejectCrossSite)
			slog.Warn("cross-site request blocked",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("sec_fetch_mode", r.Header.Get("Sec-Fetch-Mode")),
				slog.String("sec_fetch_dest", r.Header.Get("Sec-Fetch-Dest")),
			)
			WriteErrorResponse(w, http.StatusForbidden, model.NewCrossSiteBlockedError())
		})
	}
}

// allowedByResourcePolicy はリクエストがリソース分離ポリシーで許可されるかを判定する。
func allowedByResourcePolicy(r *http.Request) bool {
	h := r.Header
	if h.Get("Sec-Fetch-Site") != "cross-site" {
		return true
	}

	mode := h.Get("Sec-Fetch-Mode")
	dest := h.Get("Sec-Fetch-Dest")

	// Mode・Destがともに空のOPTIONS（CORSプリフライト）は許可
	if mode == "" && dest == "" && r.Method == http.MethodOptions {
		return true
	}

	if navigationalModes[mode] && navigationalDests[dest] &&
		(r.Method == http.MethodGet || r.Method == http.MethodHead) {
		return true
	}

	return false
}
