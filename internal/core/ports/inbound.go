package ports

import (
	"context"
	"io"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// DeckIngestor is the inbound contract for deck upload orchestration.
type DeckIngestor interface {
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Deck, error)
}

// DeckAnalyzer is the inbound contract for the asynchronous two-pass
// analysis pipeline.
type DeckAnalyzer interface {
	AnalyzeByID(ctx context.Context, deckID string) error
}
