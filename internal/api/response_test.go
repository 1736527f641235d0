package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/conversation"
	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/ingest"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/openai"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("Content-Length") == "" {
		t.Error("Content-Length not set")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"bad": func() {}})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 on encode failure", rec.Code)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "bot_not_found", "bot not found")

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error.Code != "bot_not_found" || body.Error.Message != "bot not found" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bot not found", err: fmt.Errorf("resolving: %w", bot.ErrNotFound), want: http.StatusNotFound},
		{name: "source not found", err: knowledge.ErrNotFound, want: http.StatusNotFound},
		{name: "conversation not found", err: conversation.ErrNotFound, want: http.StatusNotFound},
		{name: "empty content", err: ingest.ErrEmptyContent, want: http.StatusUnprocessableEntity},
		{name: "fetch failure", err: &extract.FetchError{URL: "https://x", StatusCode: 500}, want: http.StatusUnprocessableEntity},
		{name: "extraction failure", err: fmt.Errorf("pdf: %w", extract.ErrExtraction), want: http.StatusUnprocessableEntity},
		{name: "embedding unavailable", err: openai.ErrUnavailable, want: http.StatusServiceUnavailable},
		{name: "no completion", err: openai.ErrNoCompletion, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("surprise"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, log.NewNop(), tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
