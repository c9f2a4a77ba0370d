package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGateway_CORSHeaders(t *testing.T) {
	h := GatewayMiddleware(SecConfig{AllowedOrigins: []string{"https://tinykind.app"}})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/t/abc", nil)
	req.Header.Set("Origin", "https://tinykind.app")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://tinykind.app" {
		t.Fatalf("allow-origin = %q", got)
	}

	// disallowed origin gets no CORS headers but still passes through
	req = httptest.NewRequest(http.MethodGet, "/v1/t/abc", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected CORS header for disallowed origin")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("request itself must still be served, got %d", rec.Code)
	}
}

func TestGateway_Preflight(t *testing.T) {
	h := GatewayMiddleware(SecConfig{AllowedOrigins: []string{"*"}})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/messages", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatalf("preflight must advertise allowed headers")
	}
}

func TestGateway_RateLimit(t *testing.T) {
	h := GatewayMiddleware(SecConfig{RPS: 1, Burst: 2})(okHandler())

	status := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/t/abc", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if status() != http.StatusOK || status() != http.StatusOK {
		t.Fatalf("burst requests must pass")
	}
	if status() != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst")
	}

	// a different client has its own budget
	req := httptest.NewRequest(http.MethodGet, "/v1/t/abc", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second client must not share the first client's budget")
	}
}

func TestGateway_HealthBypassesLimiter(t *testing.T) {
	h := GatewayMiddleware(SecConfig{RPS: 1, Burst: 1})(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("health probe %d was limited", i)
		}
	}
}

func TestRequireAdmin_NotFoundShape(t *testing.T) {
	h := RequireAdmin("tok")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/messages", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing token status = %d, want 404", rec.Code)
	}

	req.Header.Set(AdminTokenHeader, "tok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d", rec.Code)
	}

	// an unconfigured token never admits anyone
	closed := RequireAdmin("")(okHandler())
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/messages", nil)
	req.Header.Set(AdminTokenHeader, "")
	rec = httptest.NewRecorder()
	closed.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unconfigured token must reject, got %d", rec.Code)
	}
}
