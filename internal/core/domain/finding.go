package domain

// Category is the closed set of finding categories. The classifier answers
// with the Japanese labels; the normalizer maps them onto these values.
type Category string

const (
	CategoryTypo       Category = "typo"
	CategoryExpression Category = "expression"
	CategoryCitation   Category = "citation"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTypo, CategoryExpression, CategoryCitation:
		return true
	default:
		return false
	}
}

type CorrectionType string

const (
	CorrectionRequired CorrectionType = "required"
	CorrectionOptional CorrectionType = "optional"
)

func (t CorrectionType) Valid() bool {
	return t == CorrectionRequired || t == CorrectionOptional
}

// Finding is one reported compliance issue tied to a slide. Inside a store
// CorrectionType always carries one of the two enum values and Basis is ""
// until the legal augmentation pass fills it.
type Finding struct {
	ID             string         `json:"id"`
	SlideNumber    int            `json:"slideNumber"`
	Category       Category       `json:"category"`
	Basis          string         `json:"basis"`
	Issue          string         `json:"issue"`
	Suggestion     string         `json:"suggestion"`
	CorrectionType CorrectionType `json:"correctionType"`
}

// FindingPatch is a partial update; nil fields are left untouched.
type FindingPatch struct {
	SlideNumber    *int            `json:"slideNumber,omitempty"`
	Category       *Category       `json:"category,omitempty"`
	Basis          *string         `json:"basis,omitempty"`
	Issue          *string         `json:"issue,omitempty"`
	Suggestion     *string         `json:"suggestion,omitempty"`
	CorrectionType *CorrectionType `json:"correctionType,omitempty"`
}

func (p FindingPatch) Apply(f Finding) Finding {
	if p.SlideNumber != nil {
		f.SlideNumber = *p.SlideNumber
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Basis != nil {
		f.Basis = *p.Basis
	}
	if p.Issue != nil {
		f.Issue = *p.Issue
	}
	if p.Suggestion != nil {
		f.Suggestion = *p.Suggestion
	}
	if p.CorrectionType != nil {
		f.CorrectionType = *p.CorrectionType
	}
	return f
}

// LegalMatch is one answer of the legal matching service. An empty
// LegalBasis means no citation applies to the issue.
type LegalMatch struct {
	OriginalIssue string `json:"originalIssue"`
	LegalBasis    string `json:"legalBasis"`
}
