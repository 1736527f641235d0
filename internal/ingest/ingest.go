// Package ingest turns raw source material into stored, embedded knowledge.
//
// The pipeline is extract, chunk, embed, persist. Persistence is the last
// step and is atomic, so a failure anywhere earlier leaves no trace of the
// attempted source.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/chunker"
	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/knowledge"
)

// ErrEmptyContent indicates extraction produced no chunkable text. Nothing
// is persisted for such a source.
var ErrEmptyContent = errors.New("source has no extractable content")

// Extractor converts a typed input into plain text.
type Extractor interface {
	Extract(ctx context.Context, input extract.Input) (string, error)
}

// Embedder produces one embedding per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// BotResolver confirms a bot exists before any network work is spent on it.
type BotResolver interface {
	Get(ctx context.Context, id uuid.UUID) (bot.Bot, error)
}

// SourceStore persists a source and its chunks atomically.
type SourceStore interface {
	SaveSource(ctx context.Context, src knowledge.Source, chunks []knowledge.Chunk) error
}

// Result summarizes one completed ingestion.
type Result struct {
	SourceID   uuid.UUID
	ChunkCount int
	Kind       extract.Kind
	Meta       string
}

// Service runs the ingestion pipeline.
type Service struct {
	extractor    Extractor
	embedder     Embedder
	bots         BotResolver
	store        SourceStore
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// New creates an ingestion service. Non-positive chunk parameters fall back
// to the chunker defaults.
func New(extractor Extractor, embedder Embedder, bots BotResolver, store SourceStore, chunkSize, chunkOverlap int, logger *slog.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor:    extractor,
		embedder:     embedder,
		bots:         bots,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Ingest extracts, chunks, embeds, and stores one source for a bot. The
// source becomes retrievable only when every step succeeded.
func (s *Service) Ingest(ctx context.Context, botID uuid.UUID, input extract.Input) (Result, error) {
	if _, err := s.bots.Get(ctx, botID); err != nil {
		return Result{}, fmt.Errorf("resolving bot: %w", err)
	}

	text, err := s.extractor.Extract(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("extracting content: %w", err)
	}

	texts := chunker.Split(text, chunker.WithSize(s.chunkSize), chunker.WithOverlap(s.chunkOverlap))
	if len(texts) == 0 {
		return Result{}, ErrEmptyContent
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embedding %d chunks: %w", len(texts), err)
	}
	if len(embeddings) != len(texts) {
		return Result{}, fmt.Errorf("embedding count mismatch: %d embeddings for %d chunks", len(embeddings), len(texts))
	}

	now := time.Now().UTC()
	src := knowledge.Source{
		ID:        uuid.New(),
		BotID:     botID,
		Kind:      input.Kind(),
		Meta:      input.Meta(),
		CreatedAt: now,
	}
	chunks := make([]knowledge.Chunk, len(texts))
	for i, content := range texts {
		chunks[i] = knowledge.Chunk{
			ID:        uuid.New(),
			SourceID:  src.ID,
			BotID:     botID,
			Content:   content,
			Embedding: embeddings[i],
			Position:  i,
			CreatedAt: now,
		}
	}

	if err := s.store.SaveSource(ctx, src, chunks); err != nil {
		return Result{}, fmt.Errorf("storing source: %w", err)
	}

	s.logger.Info("ingested source",
		"bot_id", botID, "source_id", src.ID, "kind", src.Kind, "chunks", len(chunks))

	return Result{
		SourceID:   src.ID,
		ChunkCount: len(chunks),
		Kind:       src.Kind,
		Meta:       src.Meta,
	}, nil
}
