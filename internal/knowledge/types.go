package knowledge

import (
	"time"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/extract"
)

// Source is an ingested origin. It carries no content of its own: it is the
// grouping key and provenance record for the chunks produced from one
// ingestion call. Sources are immutable; deleting one cascades to its
// chunks.
type Source struct {
	ID        uuid.UUID
	BotID     uuid.UUID
	Kind      extract.Kind
	Meta      string // filename or URL, empty for inline text
	CreatedAt time.Time
}

// Chunk is one unit of retrievable knowledge: a bounded substring of an
// extracted document together with its embedding. Chunks are immutable once
// created and share their source's lifetime.
type Chunk struct {
	ID        uuid.UUID
	SourceID  uuid.UUID
	BotID     uuid.UUID
	Content   string
	Embedding []float32
	Position  int // insertion order within the source
	CreatedAt time.Time
}

// SearchOption configures Retrieve using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK int
}

// DefaultTopK is the number of chunks returned when no option overrides it.
const DefaultTopK = 5

// WithTopK sets the maximum number of results to return.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: DefaultTopK}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
