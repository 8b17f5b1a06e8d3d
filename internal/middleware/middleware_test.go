package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestIPAllowlist(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := IPAllowlist([]string{"127.0.0.1", "::1"}, zerolog.Nop(), zerolog.Nop())(next)

	t.Run("allowed source passes through", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/maps/surf_mesa", nil)
		req.RemoteAddr = "127.0.0.1:54321"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if !called {
			t.Fatal("allowed request never reached the handler")
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("unknown source gets 403", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/maps/surf_mesa", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if called {
			t.Fatal("denied request reached the handler")
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("denial body is not JSON: %v", err)
		}
		if body["message"] != "Not Allowed" || body["ip"] != "203.0.113.9" {
			t.Errorf("unexpected denial body: %v", body)
		}
	})
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("request id missing from context")
		}
	})
	handler := RequestID(zerolog.Nop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("generated request id not echoed in response header")
	}
}

func TestRequestIDPreservesClientValue(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})
	handler := RequestID(zerolog.Nop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "client-supplied-id" {
		t.Errorf("context request id = %q, want client value", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("echoed request id = %q, want client value", got)
	}
}
