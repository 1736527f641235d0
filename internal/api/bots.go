package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/bot"
)

type botHandler struct {
	store  BotStore
	logger *slog.Logger
}

type botRequest struct {
	Name         string  `json:"name"`
	BusinessDesc string  `json:"businessDescription"`
	Tone         string  `json:"tone"`
	CustomPrompt *string `json:"customPrompt,omitempty"`
}

type botPatch struct {
	Name         *string `json:"name,omitempty"`
	BusinessDesc *string `json:"businessDescription,omitempty"`
	Tone         *string `json:"tone,omitempty"`
	CustomPrompt *string `json:"customPrompt,omitempty"`
}

type botResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessDesc string    `json:"businessDescription"`
	Tone         string    `json:"tone"`
	CustomPrompt string    `json:"customPrompt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toBotResponse(b bot.Bot) botResponse {
	return botResponse{
		ID:           b.ID.String(),
		Name:         b.Name,
		BusinessDesc: b.BusinessDesc,
		Tone:         b.Tone,
		CustomPrompt: b.CustomPrompt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// pathUUID parses the named path value as a UUID, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "malformed "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *botHandler) create(w http.ResponseWriter, r *http.Request) {
	var req botRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "bot name is required")
		return
	}

	b := bot.Bot{
		ID:           uuid.New(),
		Name:         req.Name,
		BusinessDesc: req.BusinessDesc,
		Tone:         req.Tone,
	}
	if req.CustomPrompt != nil {
		b.CustomPrompt = *req.CustomPrompt
	}

	created, err := h.store.Create(r.Context(), b)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBotResponse(created))
}

func (h *botHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	b, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBotResponse(b))
}

func (h *botHandler) list(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	out := make([]botResponse, len(bots))
	for i, b := range bots {
		out[i] = toBotResponse(b)
	}
	writeJSON(w, http.StatusOK, map[string]any{"bots": out})
}

func (h *botHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req botPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "malformed request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "bot name cannot be blank")
		return
	}

	b, err := h.store.Update(r.Context(), id, bot.Update{
		Name:         req.Name,
		BusinessDesc: req.BusinessDesc,
		Tone:         req.Tone,
		CustomPrompt: req.CustomPrompt,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBotResponse(b))
}

func (h *botHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
