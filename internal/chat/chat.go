// Package chat orchestrates one conversational turn: ground the question in
// the bot's knowledge, complete against the model, and record the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/bot"
	"github.com/answerdesk/answerdesk/internal/conversation"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/openai"
	"github.com/answerdesk/answerdesk/internal/prompt"
)

// BotResolver loads the bot a message is addressed to.
type BotResolver interface {
	Get(ctx context.Context, id uuid.UUID) (bot.Bot, error)
}

// ConversationStore persists conversations and their message log.
type ConversationStore interface {
	Get(ctx context.Context, botID, id uuid.UUID) (conversation.Conversation, error)
	Create(ctx context.Context, botID uuid.UUID, userID string) (conversation.Conversation, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]conversation.Message, error)
	AppendPair(ctx context.Context, conversationID uuid.UUID, userContent, assistantContent string) error
}

// QueryEmbedder embeds the user's question for retrieval.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the context chunks most relevant to the query.
type Retriever interface {
	Retrieve(ctx context.Context, botID uuid.UUID, query []float32, opts ...knowledge.SearchOption) ([]string, error)
}

// Completer produces the assistant reply.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

// Request is one incoming user message. A nil ConversationID starts a new
// conversation.
type Request struct {
	BotID          uuid.UUID
	Message        string
	ConversationID *uuid.UUID
	UserID         string
}

// Response is the completed turn.
type Response struct {
	Reply          string
	ConversationID uuid.UUID
}

// Service runs the chat pipeline.
type Service struct {
	bots          BotResolver
	conversations ConversationStore
	embedder      QueryEmbedder
	retriever     Retriever
	completer     Completer
	topK          int
	historyWindow int
	logger        *slog.Logger
}

// New creates a chat service. Non-positive limits fall back to the package
// defaults.
func New(bots BotResolver, conversations ConversationStore, embedder QueryEmbedder, retriever Retriever, completer Completer, topK, historyWindow int, logger *slog.Logger) *Service {
	if topK <= 0 {
		topK = knowledge.DefaultTopK
	}
	if historyWindow <= 0 {
		historyWindow = conversation.DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bots:          bots,
		conversations: conversations,
		embedder:      embedder,
		retriever:     retriever,
		completer:     completer,
		topK:          topK,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Send handles one user message end to end. The exchange is persisted only
// after the model replied, as a single user+assistant pair, so a failure at
// any step leaves the conversation log untouched for this request.
//
// Concurrent sends on one conversation may interleave their pairs. The log
// stays pairwise consistent either way, so no locking is attempted.
func (s *Service) Send(ctx context.Context, req Request) (Response, error) {
	b, err := s.bots.Get(ctx, req.BotID)
	if err != nil {
		return Response{}, fmt.Errorf("resolving bot: %w", err)
	}

	conv, err := s.resolveConversation(ctx, req)
	if err != nil {
		return Response{}, err
	}

	history, err := s.conversations.Messages(ctx, conv.ID)
	if err != nil {
		return Response{}, fmt.Errorf("loading history: %w", err)
	}
	windowed := conversation.Window(history, s.historyWindow)

	queryVec, err := s.embedder.EmbedOne(ctx, req.Message)
	if err != nil {
		return Response{}, fmt.Errorf("embedding query: %w", err)
	}

	contextChunks, err := s.retriever.Retrieve(ctx, req.BotID, queryVec, knowledge.WithTopK(s.topK))
	if err != nil {
		return Response{}, fmt.Errorf("retrieving context: %w", err)
	}

	system := prompt.BuildSystem(b.BusinessDesc, b.Tone, contextChunks, b.CustomPrompt)

	messages := make([]openai.Message, 0, len(windowed)+2)
	messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: system})
	for _, m := range windowed {
		messages = append(messages, openai.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: req.Message})

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return Response{}, fmt.Errorf("completing: %w", err)
	}

	if err := s.conversations.AppendPair(ctx, conv.ID, req.Message, reply); err != nil {
		return Response{}, fmt.Errorf("recording exchange: %w", err)
	}

	s.logger.Info("completed chat turn",
		"bot_id", req.BotID, "conversation_id", conv.ID,
		"context_chunks", len(contextChunks), "history_messages", len(windowed))

	return Response{Reply: reply, ConversationID: conv.ID}, nil
}

// resolveConversation reuses the requested conversation when it exists and
// belongs to the bot. A missing or foreign id silently starts a fresh
// conversation instead of failing the turn.
func (s *Service) resolveConversation(ctx context.Context, req Request) (conversation.Conversation, error) {
	if req.ConversationID != nil {
		conv, err := s.conversations.Get(ctx, req.BotID, *req.ConversationID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, conversation.ErrNotFound) {
			return conversation.Conversation{}, fmt.Errorf("resolving conversation: %w", err)
		}
		s.logger.Debug("conversation id not reusable, starting fresh",
			"bot_id", req.BotID, "requested_id", *req.ConversationID)
	}

	conv, err := s.conversations.Create(ctx, req.BotID, req.UserID)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("starting conversation: %w", err)
	}
	return conv, nil
}
