package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/ports"
)

// IngestDeckUseCase stores an uploaded deck, records its metadata and
// requests analysis through the queue.
type IngestDeckUseCase struct {
	decks   ports.DeckRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDeckUseCase(
	decks ports.DeckRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDeckUseCase {
	return &IngestDeckUseCase{decks: decks, storage: storage, queue: queue}
}

func (uc *IngestDeckUseCase) Upload(
	ctx context.Context,
	filename string,
	size int64,
	body io.Reader,
) (*domain.Deck, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pptx") {
		return nil, domain.WrapError(domain.ErrValidation, "upload deck",
			errors.New("only .pptx containers are accepted"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save deck to object storage: %w", err)
	}

	deck := &domain.Deck{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		SizeBytes:   size,
		Status:      domain.DeckStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.decks.Create(ctx, deck); err != nil {
		return nil, fmt.Errorf("create deck metadata: %w", err)
	}

	if err := uc.queue.PublishAnalysisRequested(ctx, deck.ID); err != nil {
		return nil, fmt.Errorf("publish analysis request: %w", err)
	}
	return deck, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "deck.pptx"
	}
	return base
}
