package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// protectedChain はルーターと同じ順序でミドルウェアを組み立てる。
// FetchMetadata -> Session -> RateLimit -> Forgery -> Handler
func protectedChain(t *testing.T, called *bool) http.Handler {
	t.Helper()
	rl := NewRateLimiter(testRateLimiterConfig(), nil)
	t.Cleanup(rl.Stop)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusCreated)
	})
	return NewFetchMetadataMiddleware(nil)(
		NewSessionMiddleware(resolverFor("valid"), nil)(
			rl.GeneralMiddleware()(
				NewForgeryMiddleware(nil)(h))))
}

func TestMiddlewareChain_ValidSessionAndToken_ReachesHandler(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid"})
	req.Header.Set(ForgeryTokenHeader, "forgery-token")
	w := httptest.NewRecorder()

	protectedChain(t, &called).ServeHTTP(w, req)

	if !called || w.Code != http.StatusCreated {
		t.Errorf("status = %d, called = %v; want 201 and called", w.Code, called)
	}
}

// セッションがない場合は偽造対策トークンの検証より先に403になること
func TestMiddlewareChain_NoSession_Returns403BeforeForgeryCheck(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	w := httptest.NewRecorder()

	protectedChain(t, &called).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler must not be called")
	}
}

// クロスサイトからの<script src>読み込みはCookieが有効でも拒否されること
func TestMiddlewareChain_CrossSiteScriptInclusion_Blocked(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid"})
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-Mode", "no-cors")
	req.Header.Set("Sec-Fetch-Dest", "script")
	w := httptest.NewRecorder()

	protectedChain(t, &called).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler must not be called")
	}
}
