package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/answerdesk/answerdesk/internal/extract"
)

// Store persists sources, chunks, and bot assignments in PostgreSQL. The
// embedding column uses pgvector; similarity ranking itself happens in the
// Retriever. Store is safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Postgres-backed knowledge store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// SaveSource writes a source and its whole chunk set in one transaction and
// assigns the source to its owning bot. Either everything is stored or
// nothing is, so retrieval never observes a half-written source.
func (s *Store) SaveSource(ctx context.Context, src Source, chunks []Chunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO sources (id, bot_id, kind, meta, created_at) VALUES ($1, $2, $3, $4, $5)`,
		src.ID, src.BotID, string(src.Kind), src.Meta, src.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting source %s: %w", src.ID, err)
	}

	for _, c := range chunks {
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, source_id, bot_id, content, embedding, position, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.SourceID, c.BotID, c.Content, pgvector.NewVector(c.Embedding), c.Position, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting chunk %d of source %s: %w", c.Position, src.ID, err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bot_sources (bot_id, source_id) VALUES ($1, $2)`,
		src.BotID, src.ID)
	if err != nil {
		return fmt.Errorf("assigning source %s to bot %s: %w", src.ID, src.BotID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing source %s: %w", src.ID, err)
	}

	s.logger.Debug("saved source", "source_id", src.ID, "bot_id", src.BotID, "chunks", len(chunks))
	return nil
}

// DeleteSource removes a source; its chunks and assignments go with it via
// ON DELETE CASCADE.
func (s *Store) DeleteSource(ctx context.Context, sourceID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sources WHERE id = $1`, sourceID)
	if err != nil {
		return fmt.Errorf("deleting source %s: %w", sourceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source %s: %w", sourceID, ErrNotFound)
	}

	s.logger.Debug("deleted source", "source_id", sourceID)
	return nil
}

// ListSources returns a bot's sources, newest first.
func (s *Store) ListSources(ctx context.Context, botID uuid.UUID) ([]Source, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, bot_id, kind, meta, created_at FROM sources
		 WHERE bot_id = $1 ORDER BY created_at DESC, id`, botID)
	if err != nil {
		return nil, fmt.Errorf("listing sources for bot %s: %w", botID, err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var kind string
		if err := rows.Scan(&src.ID, &src.BotID, &kind, &src.Meta, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.Kind = extract.Kind(kind)
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	return sources, nil
}

// AssignedSourceIDs returns the allow-list of sources the bot may retrieve
// from, in assignment order.
func (s *Store) AssignedSourceIDs(ctx context.Context, botID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_id FROM bot_sources WHERE bot_id = $1 ORDER BY created_at, source_id`, botID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments for bot %s: %w", botID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading assignments: %w", err)
	}
	return ids, nil
}

// ChunksBySources loads every chunk belonging to the given sources in
// storage order. An empty id list returns no chunks.
func (s *Store) ChunksBySources(ctx context.Context, sourceIDs []uuid.UUID) ([]Chunk, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, bot_id, content, embedding, position, created_at FROM chunks
		 WHERE source_id = ANY($1) ORDER BY created_at, position, id`, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var vec pgvector.Vector
		if err := rows.Scan(&c.ID, &c.SourceID, &c.BotID, &c.Content, &vec, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = vec.Slice()
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	return chunks, nil
}

// Assign adds a source to a bot's allow-list. Assigning twice is a no-op.
func (s *Store) Assign(ctx context.Context, botID, sourceID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bot_sources (bot_id, source_id) VALUES ($1, $2)
		 ON CONFLICT (bot_id, source_id) DO NOTHING`, botID, sourceID)
	if err != nil {
		return fmt.Errorf("assigning source %s to bot %s: %w", sourceID, botID, err)
	}
	return nil
}

// Unassign removes a source from a bot's allow-list without deleting the
// source or its chunks.
func (s *Store) Unassign(ctx context.Context, botID, sourceID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM bot_sources WHERE bot_id = $1 AND source_id = $2`, botID, sourceID)
	if err != nil {
		return fmt.Errorf("unassigning source %s from bot %s: %w", sourceID, botID, err)
	}
	return nil
}

