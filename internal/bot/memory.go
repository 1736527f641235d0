package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory bot store with the same observable behavior
// as Store.
type MemoryStore struct {
	mu   sync.RWMutex
	bots map[uuid.UUID]Bot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bots: make(map[uuid.UUID]Bot)}
}

// Create stores a new bot.
func (m *MemoryStore) Create(ctx context.Context, b Bot) (Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bots[b.ID]; ok {
		return Bot{}, fmt.Errorf("bot %s already exists", b.ID)
	}

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	m.bots[b.ID] = b
	return b, nil
}

// Get returns a bot by id.
func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Bot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bots[id]
	if !ok {
		return Bot{}, fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// List returns all bots, newest first.
func (m *MemoryStore) List(ctx context.Context) ([]Bot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bots := make([]Bot, 0, len(m.bots))
	for _, b := range m.bots {
		bots = append(bots, b)
	}
	slices.SortStableFunc(bots, func(a, b Bot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return bots, nil
}

// Update applies a partial update and returns the new state.
func (m *MemoryStore) Update(ctx context.Context, id uuid.UUID, u Update) (Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bots[id]
	if !ok {
		return Bot{}, fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}

	u.apply(&b)
	b.UpdatedAt = time.Now()
	m.bots[id] = b
	return b, nil
}

// Delete removes a bot.
func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bots[id]; !ok {
		return fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}
	delete(m.bots, id)
	return nil
}
