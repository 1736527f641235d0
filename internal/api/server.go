// Package api exposes the bot, source, and chat pipeline as a JSON HTTP
// surface.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/chat"
	"github.com/answerdesk/answerdesk/internal/conversation"
	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/ingest"
	"github.com/answerdesk/answerdesk/internal/knowledge"
)

// BotStore is the bot persistence the handlers need.
type BotStore interface {
	Create(ctx context.Context, b bot.Bot) (bot.Bot, error)
	Get(ctx context.Context, id uuid.UUID) (bot.Bot, error)
	List(ctx context.Context) ([]bot.Bot, error)
	Update(ctx context.Context, id uuid.UUID, u bot.Update) (bot.Bot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SourceStore is the knowledge persistence the handlers need beyond
// ingestion itself.
type SourceStore interface {
	ListSources(ctx context.Context, botID uuid.UUID) ([]knowledge.Source, error)
	DeleteSource(ctx context.Context, sourceID uuid.UUID) error
	Assign(ctx context.Context, botID, sourceID uuid.UUID) error
	Unassign(ctx context.Context, botID, sourceID uuid.UUID) error
}

// Ingester runs the ingestion pipeline for one source.
type Ingester interface {
	Ingest(ctx context.Context, botID uuid.UUID, input extract.Input) (ingest.Result, error)
}

// Chatter handles one conversational turn.
type Chatter interface {
	Send(ctx context.Context, req chat.Request) (chat.Response, error)
}

// ConversationReader serves transcript reads.
type ConversationReader interface {
	List(ctx context.Context, botID uuid.UUID) ([]conversation.Conversation, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]conversation.Message, error)
}

// ServerConfig carries the dependencies of the HTTP surface.
type ServerConfig struct {
	Logger        *slog.Logger
	Bots          BotStore           // required
	Sources       SourceStore        // required
	Ingest        Ingester           // required
	Chat          Chatter            // required
	Conversations ConversationReader // required
	Pool          *pgxpool.Pool      // optional, enables the readiness ping
	TrustProxy    bool               // trust X-Real-IP/X-Forwarded-For
	RateBurst     int                // per-IP burst, 0 = default 60
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer wires all routes and the middleware stack.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Bots == nil || cfg.Sources == nil || cfg.Ingest == nil || cfg.Chat == nil || cfg.Conversations == nil {
		return nil, errors.New("bots, sources, ingest, chat, and conversations are all required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bh := &botHandler{store: cfg.Bots, logger: logger}
	sh := &sourceHandler{store: cfg.Sources, ingest: cfg.Ingest, logger: logger}
	ch := &chatHandler{chat: cfg.Chat, logger: logger}
	vh := &conversationHandler{store: cfg.Conversations, bots: cfg.Bots, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/bots", bh.create)
	mux.HandleFunc("GET /api/v1/bots", bh.list)
	mux.HandleFunc("GET /api/v1/bots/{id}", bh.get)
	mux.HandleFunc("PATCH /api/v1/bots/{id}", bh.update)
	mux.HandleFunc("DELETE /api/v1/bots/{id}", bh.delete)

	mux.HandleFunc("POST /api/v1/bots/{id}/sources", sh.ingestSource)
	mux.HandleFunc("GET /api/v1/bots/{id}/sources", sh.list)
	mux.HandleFunc("DELETE /api/v1/sources/{id}", sh.delete)
	mux.HandleFunc("PUT /api/v1/bots/{id}/sources/{sourceId}", sh.assign)
	mux.HandleFunc("DELETE /api/v1/bots/{id}/sources/{sourceId}", sh.unassign)

	mux.HandleFunc("POST /api/v1/bots/{id}/chat", ch.send)

	mux.HandleFunc("GET /api/v1/bots/{id}/conversations", vh.list)
	mux.HandleFunc("GET /api/v1/conversations/{id}/messages", vh.messages)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   RequestID → Recovery → Logging → RateLimit → Routes
	// RequestID sits above Recovery and Logging so request_id is available
	// in both panic and access log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)

	// Health probes bypass the middleware stack so they stay cheap and are
	// never rate limited.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /healthz", health)
	topMux.Handle("GET /readyz", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
