package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the reconciler
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// RecomputeBidCount sets a job's total_bid to the actual count of its bids.
// Returns the number of rows changed: zero means the counter already agreed.
func (s *Storage) RecomputeBidCount(ctx context.Context, jobID string) (int64, error) {
	query := `
		UPDATE jobs
		SET total_bid = agg.cnt,
		    updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt
			FROM bids
			WHERE job_id = $1
		) agg
		WHERE jobs.job_id = $1
		  AND jobs.total_bid <> agg.cnt
	`

	result, err := s.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute bid count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		s.logger.Warn("Repaired drifted bid counter",
			slog.String("job_id", jobID),
		)
	}

	return affected, nil
}

// ListDriftedJobIDs returns the ids of jobs whose total_bid disagrees with
// the actual bid count. Used by the periodic sweep.
func (s *Storage) ListDriftedJobIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT j.job_id
		FROM jobs j
		LEFT JOIN bids b ON b.job_id = j.job_id
		GROUP BY j.job_id, j.total_bid
		HAVING j.total_bid <> COUNT(b.bid_id)
	`

	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list drifted jobs: %w", err)
	}

	return ids, nil
}
