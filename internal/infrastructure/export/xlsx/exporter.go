// Package xlsx serializes findings into the review workbook handed to the
// reviewer.
package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

const sheetName = "AnalysisResults"

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes the findings in the given display order. The basis column
// is included only when the run was augmented, matching the review table.
func (e *Exporter) Export(findings []domain.Finding, includeBasis bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"スライド番号", "カテゴリ", "指摘事項", "改善案", "修正の種類"}
	widths := []float64{10, 15, 50, 50, 15}
	if includeBasis {
		headers = []string{"スライド番号", "カテゴリ", "根拠", "指摘事項", "改善案", "修正の種類"}
		widths = []float64{10, 15, 30, 50, 50, 15}
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellStr(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, finding := range findings {
		row := rowValues(finding, includeBasis)
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write finding row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowValues(f domain.Finding, includeBasis bool) []any {
	if includeBasis {
		return []any{f.SlideNumber, categoryLabel(f.Category), f.Basis, f.Issue, f.Suggestion, correctionLabel(f.CorrectionType)}
	}
	return []any{f.SlideNumber, categoryLabel(f.Category), f.Issue, f.Suggestion, correctionLabel(f.CorrectionType)}
}

func categoryLabel(c domain.Category) string {
	switch c {
	case domain.CategoryTypo:
		return "誤植"
	case domain.CategoryExpression:
		return "表現"
	case domain.CategoryCitation:
		return "出典"
	default:
		return string(c)
	}
}

func correctionLabel(t domain.CorrectionType) string {
	switch t {
	case domain.CorrectionRequired:
		return "必須"
	case domain.CorrectionOptional:
		return "任意"
	default:
		return string(t)
	}
}
