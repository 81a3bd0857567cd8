package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// SlideBreakMarker separates slides in the classifier prompt.
const SlideBreakMarker = "---SLIDE BREAK---"

// SlidePromptText joins extracted slides into the classifier input, each
// slide prefixed with its 1-based index so the classifier can echo exact
// slide numbers back.
func SlidePromptText(slides []domain.SlideText) string {
	parts := make([]string, len(slides))
	for i, s := range slides {
		parts[i] = fmt.Sprintf("[スライド %d]\n%s", s.Index, s.Text)
	}
	return strings.Join(parts, "\n\n"+SlideBreakMarker+"\n\n")
}

// candidate is a classifier answer before validation. Pointer slideNumber
// distinguishes absent from zero.
type candidate struct {
	SlideNumber    *int   `json:"slideNumber"`
	Category       string `json:"category"`
	Basis          string `json:"basis"`
	Issue          string `json:"issue"`
	Suggestion     string `json:"suggestion"`
	CorrectionType string `json:"correctionType"`
}

// NormalizeCandidates turns the raw classifier payload into validated,
// fully-populated findings. The payload may be a sequence, a single object
// (treated as a one-element sequence) or an empty object (treated as
// empty). Each candidate gets a fresh id; basis defaults to "" and
// correction type to optional. A candidate missing slideNumber, category,
// issue or suggestion fails the whole pass with ErrInvalidClassifierOutput.
// slideCount > 0 bounds the slide numbers; pass 0 when the count is
// unknown.
func NormalizeCandidates(raw json.RawMessage, slideCount int) ([]domain.Finding, error) {
	candidates, err := decodeCandidates(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidClassifierOutput, "decode classifier response", err)
	}

	findings := make([]domain.Finding, 0, len(candidates))
	for i, c := range candidates {
		f, err := normalizeCandidate(c, slideCount)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidClassifierOutput,
				fmt.Sprintf("candidate %d", i), err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func decodeCandidates(raw json.RawMessage) ([]candidate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var seq []candidate
		if err := json.Unmarshal(trimmed, &seq); err != nil {
			return nil, fmt.Errorf("parse candidate sequence: %w", err)
		}
		return seq, nil
	}

	// Defensive: classifiers occasionally answer with a bare object.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("parse candidate object: %w", err)
	}
	if len(probe) == 0 {
		return nil, nil
	}
	var single candidate
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, fmt.Errorf("parse single candidate: %w", err)
	}
	return []candidate{single}, nil
}

func normalizeCandidate(c candidate, slideCount int) (domain.Finding, error) {
	if c.SlideNumber == nil {
		return domain.Finding{}, fmt.Errorf("missing slideNumber")
	}
	if strings.TrimSpace(c.Category) == "" {
		return domain.Finding{}, fmt.Errorf("missing category")
	}
	if strings.TrimSpace(c.Issue) == "" {
		return domain.Finding{}, fmt.Errorf("missing issue")
	}
	if strings.TrimSpace(c.Suggestion) == "" {
		return domain.Finding{}, fmt.Errorf("missing suggestion")
	}

	n := *c.SlideNumber
	if n < 1 {
		return domain.Finding{}, fmt.Errorf("slide number %d out of range", n)
	}
	if slideCount > 0 && n > slideCount {
		return domain.Finding{}, fmt.Errorf("slide number %d exceeds slide count %d", n, slideCount)
	}

	category, ok := normalizeCategory(c.Category)
	if !ok {
		return domain.Finding{}, fmt.Errorf("unknown category %q", c.Category)
	}

	return domain.Finding{
		ID:             uuid.NewString(),
		SlideNumber:    n,
		Category:       category,
		Basis:          c.Basis,
		Issue:          c.Issue,
		Suggestion:     c.Suggestion,
		CorrectionType: normalizeCorrectionType(c.CorrectionType),
	}, nil
}

func normalizeCategory(raw string) (domain.Category, bool) {
	switch strings.TrimSpace(raw) {
	case "誤植", string(domain.CategoryTypo):
		return domain.CategoryTypo, true
	case "表現", string(domain.CategoryExpression):
		return domain.CategoryExpression, true
	case "出典", string(domain.CategoryCitation):
		return domain.CategoryCitation, true
	}
	return "", false
}

// normalizeCorrectionType resolves the wire value onto the closed enum.
// Absent or unrecognized values default to optional.
func normalizeCorrectionType(raw string) domain.CorrectionType {
	switch strings.TrimSpace(raw) {
	case "必須", string(domain.CorrectionRequired):
		return domain.CorrectionRequired
	default:
		return domain.CorrectionOptional
	}
}
