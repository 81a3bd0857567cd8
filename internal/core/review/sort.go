package review

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

type SortKey string

const (
	SortBySlideNumber    SortKey = "slideNumber"
	SortByCorrectionType SortKey = "correctionType"
)

type SortOrder string

const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(raw) {
	case SortBySlideNumber, SortByCorrectionType:
		return SortKey(raw), true
	}
	return "", false
}

func ParseSortOrder(raw string) (SortOrder, bool) {
	switch SortOrder(raw) {
	case OrderAscending, OrderDescending:
		return SortOrder(raw), true
	}
	return "", false
}

// The review UI is Japanese; raw correction-type values are compared with
// a Japanese collator when the rank does not decide.
var correctionCollator = collate.New(language.Japanese)

// correctionRank places required before optional in ascending order, which
// is not plain string order. Values outside the enum rank last and fall
// through to the collator.
func correctionRank(t domain.CorrectionType) int {
	switch t {
	case domain.CorrectionRequired:
		return 0
	case domain.CorrectionOptional:
		return 1
	default:
		return 2
	}
}

// compareFindings is the total order behind SortedView. For the
// correction-type key the tie-break chain is rank, then collated raw
// value, then slide number, then insertion order.
func compareFindings(key SortKey, a, b domain.Finding, seqA, seqB int) int {
	switch key {
	case SortByCorrectionType:
		if ra, rb := correctionRank(a.CorrectionType), correctionRank(b.CorrectionType); ra != rb {
			return ra - rb
		}
		if c := correctionCollator.CompareString(string(a.CorrectionType), string(b.CorrectionType)); c != 0 {
			return c
		}
		if a.SlideNumber != b.SlideNumber {
			return a.SlideNumber - b.SlideNumber
		}
		return seqA - seqB
	default:
		if a.SlideNumber != b.SlideNumber {
			return a.SlideNumber - b.SlideNumber
		}
		return seqA - seqB
	}
}
