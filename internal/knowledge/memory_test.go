package knowledge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/extract"
)

func newTestSource(botID uuid.UUID, nChunks int) (Source, []Chunk) {
	src := Source{
		ID:        uuid.New(),
		BotID:     botID,
		Kind:      extract.KindText,
		CreatedAt: time.Now(),
	}
	chunks := make([]Chunk, nChunks)
	for i := range chunks {
		chunks[i] = Chunk{
			ID:        uuid.New(),
			SourceID:  src.ID,
			BotID:     botID,
			Content:   "chunk",
			Embedding: []float32{1, 0},
			Position:  i,
			CreatedAt: src.CreatedAt,
		}
	}
	return src, chunks
}

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	botID := uuid.New()

	src, chunks := newTestSource(botID, 3)
	if err := store.SaveSource(ctx, src, chunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}

	ids, err := store.AssignedSourceIDs(ctx, botID)
	if err != nil {
		t.Fatalf("AssignedSourceIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != src.ID {
		t.Errorf("AssignedSourceIDs() = %v, want [%s]", ids, src.ID)
	}

	got, err := store.ChunksBySources(ctx, ids)
	if err != nil {
		t.Fatalf("ChunksBySources() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ChunksBySources() returned %d chunks, want 3", len(got))
	}
	for i, c := range got {
		if c.Position != i {
			t.Errorf("chunk %d has position %d, want insertion order preserved", i, c.Position)
		}
	}
}

func TestMemoryStoreSaveDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src, chunks := newTestSource(uuid.New(), 1)
	if err := store.SaveSource(ctx, src, chunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}
	if err := store.SaveSource(ctx, src, chunks); err == nil {
		t.Error("SaveSource() with duplicate id succeeded, want error")
	}
}

func TestMemoryStoreDeleteSource(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	botID := uuid.New()

	src, chunks := newTestSource(botID, 2)
	if err := store.SaveSource(ctx, src, chunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}

	if err := store.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}

	ids, err := store.AssignedSourceIDs(ctx, botID)
	if err != nil {
		t.Fatalf("AssignedSourceIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("assignment survived deletion: %v", ids)
	}

	got, err := store.ChunksBySources(ctx, []uuid.UUID{src.ID})
	if err != nil {
		t.Fatalf("ChunksBySources() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("chunks survived deletion: %d remain", len(got))
	}
}

func TestMemoryStoreDeleteMissing(t *testing.T) {
	store := NewMemoryStore()

	err := store.DeleteSource(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSource() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreAssignUnassign(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := uuid.New()
	other := uuid.New()

	src, chunks := newTestSource(owner, 1)
	if err := store.SaveSource(ctx, src, chunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}

	if err := store.Assign(ctx, other, src.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	// Idempotent.
	if err := store.Assign(ctx, other, src.ID); err != nil {
		t.Fatalf("Assign() repeat error = %v", err)
	}
	ids, _ := store.AssignedSourceIDs(ctx, other)
	if len(ids) != 1 {
		t.Fatalf("AssignedSourceIDs() = %v, want exactly one after repeat assign", ids)
	}

	if err := store.Unassign(ctx, other, src.ID); err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}
	ids, _ = store.AssignedSourceIDs(ctx, other)
	if len(ids) != 0 {
		t.Errorf("AssignedSourceIDs() = %v after unassign, want empty", ids)
	}

	// The owner's own assignment and the source itself are untouched.
	ids, _ = store.AssignedSourceIDs(ctx, owner)
	if len(ids) != 1 {
		t.Errorf("owner lost its assignment: %v", ids)
	}
}

func TestMemoryStoreListSources(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	botID := uuid.New()

	older, olderChunks := newTestSource(botID, 1)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer, newerChunks := newTestSource(botID, 1)

	if err := store.SaveSource(ctx, older, olderChunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}
	if err := store.SaveSource(ctx, newer, newerChunks); err != nil {
		t.Fatalf("SaveSource() error = %v", err)
	}

	got, err := store.ListSources(ctx, botID)
	if err != nil {
		t.Fatalf("ListSources() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListSources() returned %d sources, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("ListSources() order = [%s, %s], want newest first", got[0].ID, got[1].ID)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	botID := uuid.New()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			src, chunks := newTestSource(botID, 2)
			if err := store.SaveSource(ctx, src, chunks); err != nil {
				t.Errorf("SaveSource() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			ids, err := store.AssignedSourceIDs(ctx, botID)
			if err != nil {
				t.Errorf("AssignedSourceIDs() error = %v", err)
				return
			}
			if _, err := store.ChunksBySources(ctx, ids); err != nil {
				t.Errorf("ChunksBySources() error = %v", err)
			}
		}()
	}
	wg.Wait()

	ids, err := store.AssignedSourceIDs(ctx, botID)
	if err != nil {
		t.Fatalf("AssignedSourceIDs() error = %v", err)
	}
	if len(ids) != 20 {
		t.Errorf("AssignedSourceIDs() = %d sources, want 20", len(ids))
	}
}
