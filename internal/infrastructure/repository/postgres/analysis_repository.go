package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// ReplaceLatestRun deletes the deck's previous runs and stores the new one
// with its findings, keeping insertion order in the position column.
func (r *AnalysisRepository) ReplaceLatestRun(ctx context.Context, run *domain.AnalysisRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_runs WHERE deck_id = $1`, run.DeckID); err != nil {
		return fmt.Errorf("delete previous runs: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO analysis_runs (id, deck_id, state, slide_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, run.ID, run.DeckID, string(run.State), run.SlideCount, run.CreatedAt, run.UpdatedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := insertFindings(ctx, tx, run.ID, run.Findings, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetLatestRun(ctx context.Context, deckID string) (*domain.AnalysisRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, deck_id, state, slide_count, created_at, updated_at
FROM analysis_runs
WHERE deck_id = $1
ORDER BY created_at DESC
LIMIT 1
`, deckID)

	var run domain.AnalysisRun
	var state string
	err := row.Scan(&run.ID, &run.DeckID, &state, &run.SlideCount, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch latest run", fmt.Errorf("deck %s", deckID))
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.State = domain.RunState(state)

	findings, err := r.runFindings(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Findings = findings
	return &run, nil
}

func (r *AnalysisRepository) UpdateRunState(ctx context.Context, runID string, state domain.RunState) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE analysis_runs
SET state = $2, updated_at = $3
WHERE id = $1
`, runID, string(state), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update run state: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update run state", fmt.Errorf("run %s", runID))
	}
	return nil
}

// ReplaceRunFindings rewrites the run's finding rows to the given
// sequence. Used after augmentation and after an undo restore.
func (r *AnalysisRepository) ReplaceRunFindings(ctx context.Context, runID string, findings []domain.Finding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin findings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("delete run findings: %w", err)
	}
	if err := insertFindings(ctx, tx, runID, findings, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit findings tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) InsertFinding(ctx context.Context, runID string, finding *domain.Finding) error {
	var next int
	row := r.db.QueryRowContext(ctx, `
SELECT COALESCE(MAX(position), -1) + 1 FROM findings WHERE run_id = $1
`, runID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("next finding position: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO findings (id, run_id, position, slide_number, category, basis, issue, suggestion, correction_type)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, finding.ID, runID, next, finding.SlideNumber, string(finding.Category),
		finding.Basis, finding.Issue, finding.Suggestion, string(finding.CorrectionType))
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) UpdateFinding(ctx context.Context, finding *domain.Finding) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE findings
SET slide_number = $2, category = $3, basis = $4, issue = $5, suggestion = $6, correction_type = $7
WHERE id = $1
`, finding.ID, finding.SlideNumber, string(finding.Category),
		finding.Basis, finding.Issue, finding.Suggestion, string(finding.CorrectionType))
	if err != nil {
		return fmt.Errorf("update finding: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update finding", fmt.Errorf("finding %s", finding.ID))
	}
	return nil
}

func (r *AnalysisRepository) DeleteFinding(ctx context.Context, findingID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM findings WHERE id = $1`, findingID)
	if err != nil {
		return fmt.Errorf("delete finding: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete finding", fmt.Errorf("finding %s", findingID))
	}
	return nil
}

func (r *AnalysisRepository) runFindings(ctx context.Context, runID string) ([]domain.Finding, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, slide_number, category, basis, issue, suggestion, correction_type
FROM findings
WHERE run_id = $1
ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var category, correctionType string
		if err := rows.Scan(&f.ID, &f.SlideNumber, &category, &f.Basis, &f.Issue, &f.Suggestion, &correctionType); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Category = domain.Category(category)
		f.CorrectionType = domain.CorrectionType(correctionType)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return findings, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFindings(ctx context.Context, tx execer, runID string, findings []domain.Finding, startPos int) error {
	for i, f := range findings {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO findings (id, run_id, position, slide_number, category, basis, issue, suggestion, correction_type)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, f.ID, runID, startPos+i, f.SlideNumber, string(f.Category),
			f.Basis, f.Issue, f.Suggestion, string(f.CorrectionType)); err != nil {
			return fmt.Errorf("insert finding %d: %w", i, err)
		}
	}
	return nil
}
