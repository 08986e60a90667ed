package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/solosphere/solosphere-be/internal/api/domain"
	"github.com/solosphere/solosphere-be/internal/api/model"
)

const bidColumns = `bid_id, job_id, worker_email, buyer_email, price, deadline,
			comment, status, created_at, updated_at`

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations, raised by the (worker_email, job_id) backstop index.
const pqUniqueViolation = "23505"

// CreateBid inserts a bid and increments the job's bid counter in a single
// transaction. The increment is an atomic in-place add, never a
// read-modify-write, so concurrent submissions on the same job cannot lose
// updates. A second bid by the same worker on the same job fails with
// domain.ErrDuplicateBid and leaves the counter untouched.
func (s *Storage) CreateBid(ctx context.Context, bid *model.Bid) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE worker_email = $1 AND job_id = $2)`,
		bid.WorkerEmail, bid.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to check existing bid: %w", err)
	}

	if exists {
		return domain.ErrDuplicateBid
	}

	insert := `
		INSERT INTO bids (
			bid_id, job_id, worker_email, buyer_email, price, deadline,
			comment, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)
	`

	_, err = tx.ExecContext(
		ctx,
		insert,
		bid.BidID,
		bid.JobID,
		bid.WorkerEmail,
		bid.BuyerEmail,
		bid.Price,
		bid.Deadline,
		bid.Comment,
		bid.Status,
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	if err != nil {
		// The unique index backstops the pre-check under concurrent
		// submissions by the same worker.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateBid
		}
		return fmt.Errorf("failed to insert bid: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE jobs SET total_bid = total_bid + 1, updated_at = NOW() WHERE job_id = $1`,
		bid.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment bid count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// The job was deleted between the handler's lookup and this write. Roll
	// everything back rather than leave an orphan bid.
	if affected == 0 {
		return domain.ErrJobNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bid: %w", err)
	}

	s.logger.Info("Bid created",
		slog.String("bid_id", bid.BidID),
		slog.String("job_id", bid.JobID),
		slog.String("worker_email", bid.WorkerEmail),
	)

	return nil
}

// GetBidByID retrieves a single bid
func (s *Storage) GetBidByID(ctx context.Context, bidID string) (*model.Bid, error) {
	var bid model.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE bid_id = $1`

	err := s.db.GetContext(ctx, &bid, query, bidID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}

	return &bid, nil
}

// ListBidsByWorker returns the bids a worker has submitted. Callers must have
// authorized the principal against the worker email first.
func (s *Storage) ListBidsByWorker(ctx context.Context, workerEmail string) ([]model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE worker_email = $1 ORDER BY created_at DESC, bid_id DESC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, workerEmail); err != nil {
		return nil, fmt.Errorf("failed to list bids by worker: %w", err)
	}

	return bids, nil
}

// ListBidsByBuyer returns the bids placed against a buyer's jobs, matched on
// the denormalized buyer email
func (s *Storage) ListBidsByBuyer(ctx context.Context, buyerEmail string) ([]model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE buyer_email = $1 ORDER BY created_at DESC, bid_id DESC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, buyerEmail); err != nil {
		return nil, fmt.Errorf("failed to list bids by buyer: %w", err)
	}

	return bids, nil
}

// UpdateBidStatus moves a bid from one status to another. The update is
// optimistic: the WHERE clause pins the expected current status, so a
// concurrent transition makes this one fail with domain.ErrInvalidTransition.
func (s *Storage) UpdateBidStatus(ctx context.Context, bidID, from, to string) error {
	query := `
		UPDATE bids
		SET status = $1,
		    updated_at = NOW()
		WHERE bid_id = $2 AND status = $3
	`

	result, err := s.db.ExecContext(ctx, query, to, bidID, from)
	if err != nil {
		return fmt.Errorf("failed to update bid status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrInvalidTransition
	}

	s.logger.Info("Bid status updated",
		slog.String("bid_id", bidID),
		slog.String("from", from),
		slog.String("to", to),
	)

	return nil
}
