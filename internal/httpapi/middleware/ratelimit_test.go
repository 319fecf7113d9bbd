package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}

	time.Sleep(1100 * time.Millisecond)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)
	if rr2.Code != 200 {
		t.Fatalf("want 200 after refill got %d", rr2.Code)
	}
}

func TestRateLimit_PerClientAndDisabled(t *testing.T) {
	h := RateLimit(60, 1)(okHandler)

	a := httptest.NewRequest("GET", "/", nil)
	a.RemoteAddr = "10.0.0.1:1000"
	b := httptest.NewRequest("GET", "/", nil)
	b.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.9")

	for _, req := range []*http.Request{a, b} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("first request per client should pass, got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, a)
	if rr.Code != 429 {
		t.Fatalf("second request from same client should be limited, got %d", rr.Code)
	}

	off := RateLimit(0, 0)(okHandler)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		off.ServeHTTP(rr, a)
		if rr.Code != 200 {
			t.Fatalf("disabled limiter should pass, got %d", rr.Code)
		}
	}
}

func TestLimiter_EvictsIdleBuckets(t *testing.T) {
	l := newLimiter(1, 1, time.Minute)
	l.allow("old")
	l.m["old"].last = time.Now().Add(-2 * time.Minute)
	l.swept = time.Now().Add(-2 * time.Minute)

	l.allow("new")
	if _, ok := l.m["old"]; ok {
		t.Fatalf("idle bucket should have been evicted")
	}
	if _, ok := l.m["new"]; !ok {
		t.Fatalf("active bucket missing")
	}
}

func TestRateLimit_RetryAfter(t *testing.T) {
	h := RateLimit(30, 1)(okHandler)
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.1.1:5"
	h.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 || rr.Header().Get("Retry-After") != "2" {
		t.Fatalf("want 429 with Retry-After 2, got %d %q", rr.Code, rr.Header().Get("Retry-After"))
	}
}
