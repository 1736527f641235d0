package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []embedDatum `json:"data"`
}

type embedDatum struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Embed converts texts into fixed-dimension vectors, preserving input
// order. All texts go out in one batch request; each is truncated to
// MaxInputChars first. An empty input returns an empty result without a
// network call.
//
// The provider reports an index for each result and is not guaranteed to
// return them in request order, so results are re-sorted by that index
// before being mapped back onto the inputs. Any failure wraps
// ErrUnavailable and must abort the caller's current operation; partial
// results are never returned.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = truncateRunes(t, MaxInputChars)
	}

	body, err := c.post(ctx, "/embeddings", embedRequest{
		Model: c.embeddingModel,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrUnavailable, len(resp.Data), len(texts))
	}

	// Re-sort by the provider-reported index; request order is not a
	// contract we can rely on.
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(texts))
	for i, d := range resp.Data {
		if d.Index != i {
			return nil, fmt.Errorf("%w: missing embedding for input %d", ErrUnavailable, i)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding for input %d", ErrUnavailable, i)
		}
		vectors[i] = d.Embedding
	}

	c.logger.Debug("embedded batch", "count", len(texts), "dimension", len(vectors[0]))
	return vectors, nil
}

// truncateRunes cuts s to at most n runes, never mid-character.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// EmbedOne embeds a single text, typically the incoming chat message.
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
