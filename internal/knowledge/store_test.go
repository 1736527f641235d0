package knowledge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	pool := testutil.SetupPostgres(t)
	store := knowledge.NewStore(pool, log.NewNop())

	botID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO bots (id, name, business_desc, tone) VALUES ($1, $2, $3, $4)`,
		botID, "test bot", "a test business", "friendly")
	if err != nil {
		t.Fatalf("seeding bot: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	src := knowledge.Source{
		ID:        uuid.New(),
		BotID:     botID,
		Kind:      extract.KindText,
		Meta:      "",
		CreatedAt: now,
	}
	embedding := make([]float32, 1536)
	embedding[0] = 1
	chunks := []knowledge.Chunk{
		{ID: uuid.New(), SourceID: src.ID, BotID: botID, Content: "first chunk", Embedding: embedding, Position: 0, CreatedAt: now},
		{ID: uuid.New(), SourceID: src.ID, BotID: botID, Content: "second chunk", Embedding: embedding, Position: 1, CreatedAt: now},
	}

	t.Run("save and load", func(t *testing.T) {
		if err := store.SaveSource(ctx, src, chunks); err != nil {
			t.Fatalf("SaveSource() error = %v", err)
		}

		ids, err := store.AssignedSourceIDs(ctx, botID)
		if err != nil {
			t.Fatalf("AssignedSourceIDs() error = %v", err)
		}
		if len(ids) != 1 || ids[0] != src.ID {
			t.Fatalf("AssignedSourceIDs() = %v, want [%s]", ids, src.ID)
		}

		got, err := store.ChunksBySources(ctx, ids)
		if err != nil {
			t.Fatalf("ChunksBySources() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ChunksBySources() returned %d chunks, want 2", len(got))
		}
		if got[0].Content != "first chunk" || got[1].Content != "second chunk" {
			t.Errorf("chunks out of order: %q, %q", got[0].Content, got[1].Content)
		}
		if len(got[0].Embedding) != 1536 || got[0].Embedding[0] != 1 {
			t.Errorf("embedding did not round-trip: len=%d first=%v", len(got[0].Embedding), got[0].Embedding[0])
		}
	})

	t.Run("list sources", func(t *testing.T) {
		sources, err := store.ListSources(ctx, botID)
		if err != nil {
			t.Fatalf("ListSources() error = %v", err)
		}
		if len(sources) != 1 || sources[0].ID != src.ID {
			t.Fatalf("ListSources() = %v, want the saved source", sources)
		}
		if sources[0].Kind != extract.KindText {
			t.Errorf("Kind = %q, want %q", sources[0].Kind, extract.KindText)
		}
	})

	t.Run("duplicate source id rolls back", func(t *testing.T) {
		err := store.SaveSource(ctx, src, chunks)
		if err == nil {
			t.Fatal("SaveSource() with duplicate id succeeded, want error")
		}

		got, err := store.ChunksBySources(ctx, []uuid.UUID{src.ID})
		if err != nil {
			t.Fatalf("ChunksBySources() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("failed save left %d chunks, want the original 2", len(got))
		}
	})

	t.Run("assign and unassign", func(t *testing.T) {
		other := uuid.New()
		_, err := pool.Exec(ctx,
			`INSERT INTO bots (id, name, business_desc, tone) VALUES ($1, $2, $3, $4)`,
			other, "other bot", "another business", "formal")
		if err != nil {
			t.Fatalf("seeding bot: %v", err)
		}

		if err := store.Assign(ctx, other, src.ID); err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		if err := store.Assign(ctx, other, src.ID); err != nil {
			t.Fatalf("Assign() repeat error = %v", err)
		}
		ids, err := store.AssignedSourceIDs(ctx, other)
		if err != nil {
			t.Fatalf("AssignedSourceIDs() error = %v", err)
		}
		if len(ids) != 1 {
			t.Fatalf("AssignedSourceIDs() = %v, want one entry after repeat assign", ids)
		}

		if err := store.Unassign(ctx, other, src.ID); err != nil {
			t.Fatalf("Unassign() error = %v", err)
		}
		ids, err = store.AssignedSourceIDs(ctx, other)
		if err != nil {
			t.Fatalf("AssignedSourceIDs() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("AssignedSourceIDs() = %v after unassign, want empty", ids)
		}
	})

	t.Run("delete cascades", func(t *testing.T) {
		if err := store.DeleteSource(ctx, src.ID); err != nil {
			t.Fatalf("DeleteSource() error = %v", err)
		}

		got, err := store.ChunksBySources(ctx, []uuid.UUID{src.ID})
		if err != nil {
			t.Fatalf("ChunksBySources() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("chunks survived source deletion: %d remain", len(got))
		}

		ids, err := store.AssignedSourceIDs(ctx, botID)
		if err != nil {
			t.Fatalf("AssignedSourceIDs() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("assignment survived source deletion: %v", ids)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		err := store.DeleteSource(ctx, uuid.New())
		if !errors.Is(err, knowledge.ErrNotFound) {
			t.Errorf("DeleteSource() error = %v, want ErrNotFound", err)
		}
	})
}
