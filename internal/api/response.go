package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/conversation"
	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/ingest"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/openai"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code. The body is
// encoded into a buffer first so headers are only sent after successful
// encoding and an encode failure can still become a proper 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// Client disconnects are common and expected.
		slog.Debug("failed to write response body", "error", err)
	}
}

// writeError writes the uniform error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps a pipeline error onto the HTTP surface. Unknowns
// become opaque 500s; the detailed cause stays in the log.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, bot.ErrNotFound):
		writeError(w, http.StatusNotFound, "bot_not_found", "bot not found")
	case errors.Is(err, knowledge.ErrNotFound):
		writeError(w, http.StatusNotFound, "source_not_found", "source not found")
	case errors.Is(err, conversation.ErrNotFound):
		writeError(w, http.StatusNotFound, "conversation_not_found", "conversation not found")
	case errors.Is(err, ingest.ErrEmptyContent):
		writeError(w, http.StatusUnprocessableEntity, "empty_content", "source has no extractable content")
	case errors.Is(err, extract.ErrFetch):
		writeError(w, http.StatusUnprocessableEntity, "fetch_failed", "could not fetch the source URL")
	case errors.Is(err, extract.ErrExtraction):
		writeError(w, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from the source")
	case errors.Is(err, openai.ErrUnavailable), errors.Is(err, openai.ErrNoCompletion):
		logger.Error("upstream model failure", "error", err)
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", "the language model is unavailable")
	default:
		logger.Error("unhandled request error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeJSON decodes a request body into dst with unknown fields rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
