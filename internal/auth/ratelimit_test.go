package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	if !limiter.Allow("key") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("key") {
		t.Error("second request should be allowed (burst)")
	}
	if limiter.Allow("key") {
		t.Error("third request should be rejected")
	}

	// A different key gets its own bucket
	if !limiter.Allow("other") {
		t.Error("different key should be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	authCtx := &AuthContext{Token: &Token{ID: "mnt_test", UserID: "user-1"}}

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions", nil)
	req = req.WithContext(WithContext(req.Context(), authCtx))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.Allow("key")
	limiter.Allow("key")

	limiter.Cleanup(0)

	if !limiter.Allow("key") {
		t.Error("request after cleanup should be allowed")
	}
}
