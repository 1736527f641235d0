package testutil

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/answerdesk/answerdesk/internal/openai"
)

// FakeEmbedder produces deterministic embeddings derived from the input
// text, so equal texts always embed equally and similarity-based tests are
// reproducible. Set Err to force failures.
type FakeEmbedder struct {
	Err error

	mu    sync.Mutex
	calls [][]string
}

// Embed returns one synthetic vector per input.
func (f *FakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = syntheticVector(text)
	}
	return out, nil
}

// EmbedOne embeds a single text.
func (f *FakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Calls returns every batch passed to Embed, in call order.
func (f *FakeEmbedder) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// syntheticVector maps text to a small unit-ish vector. Distinct texts get
// distinct directions with high probability.
func syntheticVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()

	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = float32((sum>>(8*uint(i)))&0xff)/255 + 0.01
	}
	return vec
}

// FakeCompleter returns a canned completion and records the messages of the
// last call. Set Err to force failures.
type FakeCompleter struct {
	Response string
	Err      error

	mu       sync.Mutex
	messages []openai.Message
}

// Complete returns the canned response.
func (f *FakeCompleter) Complete(ctx context.Context, messages []openai.Message) (string, error) {
	f.mu.Lock()
	f.messages = append([]openai.Message(nil), messages...)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	if f.Response == "" {
		return "canned reply", nil
	}
	return f.Response, nil
}

// LastMessages returns the message slice from the most recent Complete call.
func (f *FakeCompleter) LastMessages() []openai.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.Message(nil), f.messages...)
}
