// Package postgres persists decks, analysis runs and finding rows.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

type DeckRepository struct {
	db *sql.DB
}

func NewDeckRepository(db *sql.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DeckRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS decks (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	state TEXT NOT NULL,
	slide_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	position INT NOT NULL,
	slide_number INT NOT NULL,
	category TEXT NOT NULL,
	basis TEXT NOT NULL DEFAULT '',
	issue TEXT NOT NULL,
	suggestion TEXT NOT NULL,
	correction_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decks_status ON decks(status);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_deck ON analysis_runs(deck_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id, position);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, filename, storage_path, size_bytes, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		deck.ID, deck.Filename, deck.StoragePath, deck.SizeBytes,
		string(deck.Status), deck.Error, deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}
	return nil
}

func (r *DeckRepository) GetByID(ctx context.Context, id string) (*domain.Deck, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, size_bytes, status, error_message, created_at, updated_at
FROM decks
WHERE id = $1
`, id)

	deck, err := scanDeck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch deck", fmt.Errorf("deck %s", id))
		}
		return nil, fmt.Errorf("scan deck: %w", err)
	}
	return deck, nil
}

func (r *DeckRepository) List(ctx context.Context) ([]domain.Deck, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, storage_path, size_bytes, status, error_message, created_at, updated_at
FROM decks
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, *deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decks: %w", err)
	}
	return decks, nil
}

func (r *DeckRepository) UpdateStatus(ctx context.Context, id string, status domain.DeckStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE decks
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update deck status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update deck status", fmt.Errorf("deck %s", id))
	}
	return nil
}

func (r *DeckRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete deck", fmt.Errorf("deck %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var deck domain.Deck
	var status string
	err := row.Scan(
		&deck.ID, &deck.Filename, &deck.StoragePath, &deck.SizeBytes,
		&status, &deck.Error, &deck.CreatedAt, &deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	deck.Status = domain.DeckStatus(status)
	return &deck, nil
}
