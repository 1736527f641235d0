package knowledge

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory knowledge store with the same observable
// behavior as Store. It backs tests and local experiments that should not
// need PostgreSQL.
type MemoryStore struct {
	mu          sync.RWMutex
	sources     map[uuid.UUID]Source
	chunks      map[uuid.UUID][]Chunk     // keyed by source id, in insertion order
	assignments map[uuid.UUID][]uuid.UUID // bot id -> assigned source ids, in assignment order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources:     make(map[uuid.UUID]Source),
		chunks:      make(map[uuid.UUID][]Chunk),
		assignments: make(map[uuid.UUID][]uuid.UUID),
	}
}

// SaveSource stores a source, its chunks, and the bot assignment as one
// atomic update.
func (m *MemoryStore) SaveSource(ctx context.Context, src Source, chunks []Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[src.ID]; ok {
		return fmt.Errorf("source %s already exists", src.ID)
	}

	m.sources[src.ID] = src
	m.chunks[src.ID] = slices.Clone(chunks)
	if !slices.Contains(m.assignments[src.BotID], src.ID) {
		m.assignments[src.BotID] = append(m.assignments[src.BotID], src.ID)
	}
	return nil
}

// DeleteSource removes a source, its chunks, and every assignment of it.
func (m *MemoryStore) DeleteSource(ctx context.Context, sourceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[sourceID]; !ok {
		return fmt.Errorf("source %s: %w", sourceID, ErrNotFound)
	}

	delete(m.sources, sourceID)
	delete(m.chunks, sourceID)
	for botID, ids := range m.assignments {
		m.assignments[botID] = slices.DeleteFunc(ids, func(id uuid.UUID) bool {
			return id == sourceID
		})
	}
	return nil
}

// ListSources returns a bot's sources, newest first.
func (m *MemoryStore) ListSources(ctx context.Context, botID uuid.UUID) ([]Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sources []Source
	for _, src := range m.sources {
		if src.BotID == botID {
			sources = append(sources, src)
		}
	}
	slices.SortStableFunc(sources, func(a, b Source) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return sources, nil
}

// AssignedSourceIDs returns the bot's allow-list in assignment order.
func (m *MemoryStore) AssignedSourceIDs(ctx context.Context, botID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.assignments[botID]), nil
}

// ChunksBySources returns the chunks of the given sources in storage order.
func (m *MemoryStore) ChunksBySources(ctx context.Context, sourceIDs []uuid.UUID) ([]Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Chunk
	for _, id := range sourceIDs {
		out = append(out, m.chunks[id]...)
	}
	return out, nil
}

// Assign adds a source to a bot's allow-list. Assigning twice is a no-op.
func (m *MemoryStore) Assign(ctx context.Context, botID, sourceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.assignments[botID], sourceID) {
		return nil
	}
	m.assignments[botID] = append(m.assignments[botID], sourceID)
	return nil
}

// Unassign removes a source from a bot's allow-list.
func (m *MemoryStore) Unassign(ctx context.Context, botID, sourceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignments[botID] = slices.DeleteFunc(m.assignments[botID], func(id uuid.UUID) bool {
		return id == sourceID
	})
	return nil
}
