package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/answerdesk/answerdesk/internal/log"
)

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	handler := recoveryMiddleware(log.NewNop())(panicky)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRecoveryAfterHeadersSent(t *testing.T) {
	leaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("too late")
	})
	handler := recoveryMiddleware(log.NewNop())(leaky)

	rec := httptest.NewRecorder()
	// Must not panic through, and must not try to rewrite the status.
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want the already-sent 200", rec.Code)
	}
}

// RequestID wraps Recovery in the server stack, so a panic log must carry
// the request id instead of an empty string.
func TestRecoveryLogsRequestID(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf, log.Config{})
	handler := requestIDMiddleware()(recoveryMiddleware(logger)(panicky))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "corr-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "corr-42") {
		t.Errorf("panic log missing request id: %s", buf.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	})
	handler := requestIDMiddleware()(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("request id missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("header id %q != context id %q", got, seen)
	}

	// A caller-supplied id is preserved.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-chosen")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "caller-chosen" {
		t.Errorf("context id = %q, want caller-chosen", seen)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{name: "remote addr only", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "proxy headers ignored when untrusted", remoteAddr: "10.0.0.1:1234", realIP: "1.2.3.4", want: "10.0.0.1"},
		{name: "x-real-ip trusted", remoteAddr: "10.0.0.1:1234", realIP: "1.2.3.4", trustProxy: true, want: "1.2.3.4"},
		{name: "x-forwarded-for first hop", remoteAddr: "10.0.0.1:1234", forwarded: "5.6.7.8, 9.9.9.9", trustProxy: true, want: "5.6.7.8"},
		{name: "garbage header falls through", remoteAddr: "10.0.0.1:1234", realIP: "not-an-ip", trustProxy: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
