package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// ChunkSource is the slice of store behavior retrieval needs. Both Store and
// MemoryStore satisfy it.
type ChunkSource interface {
	AssignedSourceIDs(ctx context.Context, botID uuid.UUID) ([]uuid.UUID, error)
	ChunksBySources(ctx context.Context, sourceIDs []uuid.UUID) ([]Chunk, error)
}

// Retriever ranks a bot's assigned chunks against a query embedding.
type Retriever struct {
	store  ChunkSource
	logger *slog.Logger
}

// NewRetriever creates a retriever over the given store.
func NewRetriever(store ChunkSource, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, logger: logger}
}

// Retrieve returns the contents of the chunks most similar to the query
// embedding, best first, drawn only from sources assigned to the bot. A bot
// with no assigned sources gets an empty result, not an error. Ties keep
// storage order, so rankings are deterministic.
func (r *Retriever) Retrieve(ctx context.Context, botID uuid.UUID, query []float32, opts ...SearchOption) ([]string, error) {
	cfg := buildSearchConfig(opts)

	sourceIDs, err := r.store.AssignedSourceIDs(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("loading assigned sources: %w", err)
	}
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	chunks, err := r.store.ChunksBySources(ctx, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	type scored struct {
		content string
		score   float64
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{content: c.Content, score: CosineSimilarity(query, c.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	k := cfg.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, k)
	for i := range out {
		out[i] = ranked[i].content
	}

	r.logger.Debug("retrieved context",
		"bot_id", botID, "candidates", len(chunks), "returned", len(out), "top_k", cfg.topK)
	return out, nil
}
