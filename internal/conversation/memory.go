package conversation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory conversation store with the same observable
// behavior as Store.
type MemoryStore struct {
	mu       sync.RWMutex
	convs    map[uuid.UUID]Conversation
	messages map[uuid.UUID][]Message // keyed by conversation id, chronological
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs:    make(map[uuid.UUID]Conversation),
		messages: make(map[uuid.UUID][]Message),
	}
}

// Get returns a conversation only if it belongs to the given bot.
func (m *MemoryStore) Get(ctx context.Context, botID, id uuid.UUID) (Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.convs[id]
	if !ok || c.BotID != botID {
		return Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// Create starts a new conversation for the bot.
func (m *MemoryStore) Create(ctx context.Context, botID uuid.UUID, userID string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	c := Conversation{
		ID:        uuid.New(),
		BotID:     botID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.convs[c.ID] = c
	return c, nil
}

// List returns a bot's conversations, most recently active first.
func (m *MemoryStore) List(ctx context.Context, botID uuid.UUID) ([]Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var convs []Conversation
	for _, c := range m.convs {
		if c.BotID == botID {
			convs = append(convs, c)
		}
	}
	slices.SortStableFunc(convs, func(a, b Conversation) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return convs, nil
}

// Messages returns a conversation's full log in chronological order.
func (m *MemoryStore) Messages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.messages[conversationID]), nil
}

// AppendPair records a user message and the assistant reply atomically.
func (m *MemoryStore) AppendPair(ctx context.Context, conversationID uuid.UUID, userContent, assistantContent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.convs[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}

	// Same stamping scheme as the Postgres store: the assistant row is one
	// microsecond after the user row, so timestamp order matches turn order.
	userAt := time.Now()
	assistantAt := userAt.Add(time.Microsecond)
	m.messages[conversationID] = append(m.messages[conversationID],
		Message{ID: uuid.New(), ConversationID: conversationID, Role: RoleUser, Content: userContent, CreatedAt: userAt},
		Message{ID: uuid.New(), ConversationID: conversationID, Role: RoleAssistant, Content: assistantContent, CreatedAt: assistantAt},
	)
	c.UpdatedAt = assistantAt
	m.convs[conversationID] = c
	return nil
}

// appendRaw inserts a message directly, bypassing the pair invariant. Test
// helper for seeding histories that contain system messages.
func (m *MemoryStore) appendRaw(conversationID uuid.UUID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[conversationID] = append(m.messages[conversationID],
		Message{ID: uuid.New(), ConversationID: conversationID, Role: role, Content: content, CreatedAt: time.Now()})
}
