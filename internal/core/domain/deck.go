package domain

import "time"

type DeckStatus string

const (
	DeckStatusUploaded  DeckStatus = "uploaded"
	DeckStatusAnalyzing DeckStatus = "analyzing"
	DeckStatusAnalyzed  DeckStatus = "analyzed"
	DeckStatusFailed    DeckStatus = "failed"
)

// Deck is one uploaded slide-deck container.
type Deck struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	StoragePath string     `json:"storage_path"`
	SizeBytes   int64      `json:"size_bytes"`
	Status      DeckStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SlideText is the extracted plain text of one slide, 1-based. Slides
// without text-bearing runs still appear, with an empty Text, so that the
// index sequence stays contiguous.
type SlideText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type RunState string

const (
	RunStateClassified RunState = "classified"
	RunStateAugmented  RunState = "augmented"
)

// AnalysisRun groups the findings produced by one classification pass over
// a deck, possibly enriched once by the legal augmentation pass.
type AnalysisRun struct {
	ID         string    `json:"id"`
	DeckID     string    `json:"deck_id"`
	State      RunState  `json:"state"`
	SlideCount int       `json:"slide_count"`
	Findings   []Finding `json:"findings"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
