package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func doRequest(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(h)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestIDGenerated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := doRequest(t, RequestID(), okHandler, req)

	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := doRequest(t, RequestID(), okHandler, req)

	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected caller id echoed, got %q", got)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	rec := doRequest(t, Logger(zerolog.Nop()), okHandler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	panicking := func(c echo.Context) error {
		panic("boom")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := doRequest(t, Recovery(zerolog.Nop()), panicking, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0, BurstSize: 2})

	e := echo.New()
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(okHandler)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request limited, got %v", codes)
	}
}

func TestRateLimitKeysByIP(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0, BurstSize: 1})

	e := echo.New()
	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(okHandler)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected independent bucket for %s, got %d", addr, rec.Code)
		}
	}
}
