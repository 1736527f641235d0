package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/chat"
)

// maxChatBody bounds a chat request. Messages are short; anything near this
// limit is abuse, not conversation.
const maxChatBody = 64 << 10

type chatHandler struct {
	chat   Chatter
	logger *slog.Logger
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	botID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	sendReq := chat.Request{
		BotID:   botID,
		Message: req.Message,
		UserID:  req.UserID,
	}
	if req.ConversationID != "" {
		convID, err := uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "malformed conversationId")
			return
		}
		sendReq.ConversationID = &convID
	}

	resp, err := h.chat.Send(r.Context(), sendReq)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:          resp.Reply,
		ConversationID: resp.ConversationID.String(),
	})
}
