package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Message roles on the completion wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt, windowed history, and new user message
// to the model and returns the first choice's text, trimmed. An empty or
// missing choice is an error wrapping ErrNoCompletion, never a silently
// empty reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := c.post(ctx, "/chat/completions", completionRequest{
		Model:     c.chatModel,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCompletion, err)
	}

	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrNoCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response had no choices", ErrNoCompletion)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: first choice was empty", ErrNoCompletion)
	}

	c.logger.Debug("completion received", "messages", len(messages), "reply_chars", len(reply))
	return reply, nil
}
