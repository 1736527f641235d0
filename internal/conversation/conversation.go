// Package conversation persists chat history: conversations scoped to a bot
// and their append-only message log.
package conversation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Message roles as stored. The system role can appear in history but is
// excluded from the prompt window.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is one chat thread between an end user and a bot.
type Conversation struct {
	ID        uuid.UUID
	BotID     uuid.UUID
	UserID    string // optional external identity, empty when anonymous
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one entry in a conversation's log. Messages are append-only
// and never edited.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           string
	Content        string
	CreatedAt      time.Time
}

// DefaultWindow is the number of trailing messages included in a prompt.
const DefaultWindow = 20

// Window returns the messages that belong in the model prompt: system
// messages are dropped, then the most recent limit messages are kept in
// chronological order. A non-positive limit returns nothing.
func Window(messages []Message, limit int) []Message {
	if limit <= 0 {
		return nil
	}

	kept := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		kept = append(kept, m)
	}

	if len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}
