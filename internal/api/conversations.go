package api

import (
	"log/slog"
	"net/http"
	"time"
)

type conversationHandler struct {
	store  ConversationReader
	bots   BotStore
	logger *slog.Logger
}

type conversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type messageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *conversationHandler) list(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.bots.Get(r.Context(), botID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	convs, err := h.store.List(r.Context(), botID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	out := make([]conversationResponse, len(convs))
	for i, c := range convs {
		out[i] = conversationResponse{
			ID:        c.ID.String(),
			UserID:    c.UserID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": out})
}

func (h *conversationHandler) messages(w http.ResponseWriter, r *http.Request) {
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	msgs, err := h.store.Messages(r.Context(), convID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	out := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = messageResponse{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}
