package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists bots in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Postgres-backed bot store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

const botColumns = `id, name, business_desc, tone, custom_prompt, created_at, updated_at`

func scanBot(row pgx.Row) (Bot, error) {
	var b Bot
	err := row.Scan(&b.ID, &b.Name, &b.BusinessDesc, &b.Tone, &b.CustomPrompt, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create stores a new bot and returns it with its database timestamps.
func (s *Store) Create(ctx context.Context, b Bot) (Bot, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO bots (id, name, business_desc, tone, custom_prompt)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+botColumns,
		b.ID, b.Name, b.BusinessDesc, b.Tone, b.CustomPrompt)

	created, err := scanBot(row)
	if err != nil {
		return Bot{}, fmt.Errorf("creating bot: %w", err)
	}

	s.logger.Info("created bot", "bot_id", created.ID, "name", created.Name)
	return created, nil
}

// Get returns a bot by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Bot, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+botColumns+` FROM bots WHERE id = $1`, id)

	b, err := scanBot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bot{}, fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Bot{}, fmt.Errorf("loading bot %s: %w", id, err)
	}
	return b, nil
}

// List returns all bots, newest first.
func (s *Store) List(ctx context.Context) ([]Bot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+botColumns+` FROM bots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing bots: %w", err)
	}
	defer rows.Close()

	var bots []Bot
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bot: %w", err)
		}
		bots = append(bots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bots: %w", err)
	}
	return bots, nil
}

// Update applies a partial update and returns the new state.
func (s *Store) Update(ctx context.Context, id uuid.UUID, u Update) (Bot, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE bots SET
		   name          = COALESCE($2, name),
		   business_desc = COALESCE($3, business_desc),
		   tone          = COALESCE($4, tone),
		   custom_prompt = COALESCE($5, custom_prompt),
		   updated_at    = now()
		 WHERE id = $1
		 RETURNING `+botColumns,
		id, u.Name, u.BusinessDesc, u.Tone, u.CustomPrompt)

	b, err := scanBot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bot{}, fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Bot{}, fmt.Errorf("updating bot %s: %w", id, err)
	}

	s.logger.Info("updated bot", "bot_id", b.ID)
	return b, nil
}

// Delete removes a bot; its sources, chunks, and conversations cascade.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting bot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bot %s: %w", id, ErrNotFound)
	}

	s.logger.Info("deleted bot", "bot_id", id)
	return nil
}
