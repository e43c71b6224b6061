// Package postgres persists ranked biomarker runs. The sink is optional:
// the batch driver only constructs a repository when a database URL is
// configured.
package postgres

import (
	"context"
	"fmt"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// CandidateRepository stores ranked candidates per run.
type CandidateRepository struct {
	db *sqlx.DB
}

// Connect opens a postgres connection pool for the repository.
func Connect(url string) (*CandidateRepository, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &CandidateRepository{db: db}, nil
}

// NewCandidateRepository wraps an existing connection pool.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// SaveRun inserts a run row and its ranked candidates in one transaction.
func (r *CandidateRepository) SaveRun(ctx context.Context, runID core.RunID, fingerprint core.Hash, ranked []omics.RankedBiomarker) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO biomarker_runs (run_id, fingerprint, candidate_count, created_at)
		VALUES ($1, $2, $3, NOW())`,
		runID.String(), fingerprint.String(), len(ranked),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insert := `
		INSERT INTO biomarker_candidates (
			run_id, rank, feature, layers_significant, layers_tested,
			best_adjusted_p, max_abs_effect, max_abs_correlation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, c := range ranked {
		if _, err := tx.ExecContext(ctx, insert,
			runID.String(), c.Rank, c.Feature.String(),
			c.LayersSignificant, c.LayersTested,
			nullableFloat(c.BestAdjustedP), nullableFloat(c.MaxAbsEffect), nullableFloat(c.MaxAbsCorrelation),
		); err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.Feature, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// TopCandidates returns the best-ranked candidates for a run.
func (r *CandidateRepository) TopCandidates(ctx context.Context, runID core.RunID, limit int) ([]omics.RankedBiomarker, error) {
	rows := []struct {
		Rank              int      `db:"rank"`
		Feature           string   `db:"feature"`
		LayersSignificant int      `db:"layers_significant"`
		LayersTested      int      `db:"layers_tested"`
		BestAdjustedP     *float64 `db:"best_adjusted_p"`
		MaxAbsEffect      *float64 `db:"max_abs_effect"`
		MaxAbsCorrelation *float64 `db:"max_abs_correlation"`
	}{}

	err := r.db.SelectContext(ctx, &rows, `
		SELECT rank, feature, layers_significant, layers_tested,
		       best_adjusted_p, max_abs_effect, max_abs_correlation
		FROM biomarker_candidates
		WHERE run_id = $1
		ORDER BY rank ASC
		LIMIT $2`,
		runID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}

	out := make([]omics.RankedBiomarker, 0, len(rows))
	for _, row := range rows {
		out = append(out, omics.RankedBiomarker{
			Rank:              row.Rank,
			Feature:           core.FeatureID(row.Feature),
			LayersSignificant: row.LayersSignificant,
			LayersTested:      row.LayersTested,
			BestAdjustedP:     floatOrNaN(row.BestAdjustedP),
			MaxAbsEffect:      floatOrNaN(row.MaxAbsEffect),
			MaxAbsCorrelation: floatOrNaN(row.MaxAbsCorrelation),
		})
	}
	return out, nil
}

// Close releases the connection pool.
func (r *CandidateRepository) Close() error { return r.db.Close() }
