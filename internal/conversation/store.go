package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists conversations and messages in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Postgres-backed conversation store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

const convColumns = `id, bot_id, COALESCE(user_id, ''), created_at, updated_at`

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.BotID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns a conversation only if it exists and belongs to the given
// bot. A conversation id from another bot is ErrNotFound, not a leak.
func (s *Store) Get(ctx context.Context, botID, id uuid.UUID) (Conversation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+convColumns+` FROM conversations WHERE id = $1 AND bot_id = $2`, id, botID)

	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("loading conversation %s: %w", id, err)
	}
	return c, nil
}

// Create starts a new conversation for the bot.
func (s *Store) Create(ctx context.Context, botID uuid.UUID, userID string) (Conversation, error) {
	var uid *string
	if userID != "" {
		uid = &userID
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (id, bot_id, user_id) VALUES ($1, $2, $3)
		 RETURNING `+convColumns,
		uuid.New(), botID, uid)

	c, err := scanConversation(row)
	if err != nil {
		return Conversation{}, fmt.Errorf("creating conversation for bot %s: %w", botID, err)
	}

	s.logger.Debug("created conversation", "conversation_id", c.ID, "bot_id", botID)
	return c, nil
}

// List returns a bot's conversations, most recently active first.
func (s *Store) List(ctx context.Context, botID uuid.UUID) ([]Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+convColumns+` FROM conversations
		 WHERE bot_id = $1 ORDER BY updated_at DESC, id`, botID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations for bot %s: %w", botID, err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversations: %w", err)
	}
	return convs, nil
}

// Messages returns a conversation's full log in chronological order.
func (s *Store) Messages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM messages
		 WHERE conversation_id = $1 ORDER BY created_at, id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading messages for conversation %s: %w", conversationID, err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	return msgs, nil
}

// AppendPair records a user message and the assistant reply in one
// transaction. A reply is never stored without its question, and vice
// versa; the conversation's updated_at moves with the pair.
func (s *Store) AppendPair(ctx context.Context, conversationID uuid.UUID, userContent, assistantContent string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Both rows share one transaction, and Postgres now() is
	// transaction-stable: a created_at default would stamp the pair
	// identically and leave the read order to the random id tiebreak. The
	// assistant row is stamped one microsecond after the user row, the
	// column's resolution, so Messages always returns the pair in turn
	// order.
	userAt := time.Now().UTC()
	assistantAt := userAt.Add(time.Microsecond)

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), conversationID, RoleUser, userContent, userAt)
	if err != nil {
		return fmt.Errorf("appending user message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), conversationID, RoleAssistant, assistantContent, assistantAt)
	if err != nil {
		return fmt.Errorf("appending assistant message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET updated_at = now() WHERE id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("touching conversation %s: %w", conversationID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing message pair: %w", err)
	}
	return nil
}
