package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/answerdesk/answerdesk/internal/extract"
)

// maxSourceBody bounds an upload request. Matches the PDF size ceiling plus
// base64 and JSON overhead.
const maxSourceBody = 16 << 20

type sourceHandler struct {
	store  SourceStore
	ingest Ingester
	logger *slog.Logger
}

type ingestRequest struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for kind=pdf
}

type ingestResponse struct {
	SourceID   string `json:"sourceId"`
	ChunkCount int    `json:"chunkCount"`
	SourceKind string `json:"sourceKind"`
	SourceMeta string `json:"sourceMeta,omitempty"`
}

type sourceResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Meta      string    `json:"meta,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// inputFromRequest validates the upload payload and builds the typed input.
func inputFromRequest(req ingestRequest) (extract.Input, string) {
	switch extract.Kind(req.Kind) {
	case extract.KindText:
		if strings.TrimSpace(req.Text) == "" {
			return nil, "text is required for kind=text"
		}
		return extract.Text{Content: req.Text}, ""
	case extract.KindURL:
		parsed, err := url.Parse(req.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, "url must be an absolute http or https URL"
		}
		return extract.URL{Addr: req.URL}, ""
	case extract.KindPDF:
		if req.Data == "" {
			return nil, "data is required for kind=pdf"
		}
		raw, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, "data must be valid base64"
		}
		return extract.PDF{Data: raw, Filename: req.Filename}, ""
	default:
		return nil, "kind must be one of pdf, text, url"
	}
}

func (h *sourceHandler) ingestSource(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBody)

	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "source upload exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "malformed request body")
		return
	}

	input, problem := inputFromRequest(req)
	if problem != "" {
		writeError(w, http.StatusBadRequest, "invalid_source", problem)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), botID, input)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		SourceID:   result.SourceID.String(),
		ChunkCount: result.ChunkCount,
		SourceKind: string(result.Kind),
		SourceMeta: result.Meta,
	})
}

func (h *sourceHandler) list(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sources, err := h.store.ListSources(r.Context(), botID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	out := make([]sourceResponse, len(sources))
	for i, s := range sources {
		out[i] = sourceResponse{
			ID:        s.ID.String(),
			Kind:      string(s.Kind),
			Meta:      s.Meta,
			CreatedAt: s.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": out})
}

func (h *sourceHandler) delete(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteSource(r.Context(), sourceID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *sourceHandler) assign(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sourceID, ok := pathUUID(w, r, "sourceId")
	if !ok {
		return
	}

	if err := h.store.Assign(r.Context(), botID, sourceID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *sourceHandler) unassign(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sourceID, ok := pathUUID(w, r, "sourceId")
	if !ok {
		return
	}

	if err := h.store.Unassign(r.Context(), botID, sourceID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
