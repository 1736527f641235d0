package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/answerdesk/answerdesk/internal/api"
	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/chat"
	"github.com/answerdesk/answerdesk/internal/config"
	"github.com/answerdesk/answerdesk/internal/conversation"
	"github.com/answerdesk/answerdesk/internal/database"
	"github.com/answerdesk/answerdesk/internal/extract"
	"github.com/answerdesk/answerdesk/internal/ingest"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/openai"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // completions can be slow
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// runServe wires the whole pipeline and runs the HTTP API server until
// SIGINT/SIGTERM.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{Level: parseLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	addr, err := parseServeAddr(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting answerdesk", "version", version)

	pool, err := database.Connect(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	client, err := openai.New(openai.Config{
		BaseURL:        cfg.OpenAIBaseURL,
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		MaxTokens:      cfg.MaxTokens,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating provider client: %w", err)
	}

	bots := bot.NewStore(pool, logger)
	sources := knowledge.NewStore(pool, logger)
	conversations := conversation.NewStore(pool, logger)
	retriever := knowledge.NewRetriever(sources, logger)
	extractor := extract.New(nil, logger)

	ingestSvc := ingest.New(extractor, client, bots, sources, cfg.ChunkSize, cfg.ChunkOverlap, logger)
	chatSvc := chat.New(bots, conversations, client, retriever, client, cfg.TopK, cfg.HistoryWindow, logger)

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:        logger,
		Bots:          bots,
		Sources:       sources,
		Ingest:        ingestSvc,
		Chat:          chatSvc,
		Conversations: conversations,
		Pool:          pool,
		RateBurst:     cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/v1/*",
		"health", "/healthz, /readyz",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}
