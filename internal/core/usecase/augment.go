package usecase

import (
	"strings"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// EligibleIssues returns the issue texts sent to the legal matcher: those
// of expression-category findings, in sequence order.
func EligibleIssues(findings []domain.Finding) []string {
	var issues []string
	for _, f := range findings {
		if f.Category == domain.CategoryExpression {
			issues = append(issues, f.Issue)
		}
	}
	return issues
}

// MergeLegalBases merges matcher answers back into the full finding
// sequence. Matching is by exact issue-text equality, not by id: two
// findings sharing identical issue text receive the same citation. The
// citation is appended to basis with a newline when basis already holds an
// internal-rule citation, and at most once per distinct citation text, so
// repeated augmentation with identical input cannot stack duplicates.
func MergeLegalBases(findings []domain.Finding, matches []domain.LegalMatch) []domain.Finding {
	lookup := make(map[string]string, len(matches))
	for _, m := range matches {
		if m.LegalBasis != "" {
			lookup[m.OriginalIssue] = m.LegalBasis
		}
	}

	merged := make([]domain.Finding, len(findings))
	for i, f := range findings {
		if citation, ok := lookup[f.Issue]; ok {
			f.Basis = appendCitation(f.Basis, citation)
		}
		merged[i] = f
	}
	return merged
}

func appendCitation(basis, citation string) string {
	if basis == "" {
		return citation
	}
	for _, line := range strings.Split(basis, "\n") {
		if line == citation {
			return basis
		}
	}
	return basis + "\n" + citation
}
