package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solosphere/solosphere-be/internal/api/domain"
	"github.com/solosphere/solosphere-be/internal/api/model"
	"github.com/solosphere/solosphere-be/shared/postgresql"
)

const jobColumns = `job_id, title, category, description, min_price, max_price,
			deadline, buyer_email, buyer_name, total_bid, created_at, updated_at`

// Storage handles all database operations for the API service
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// CreateJob persists a new job. The bid counter always starts at zero.
func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, title, category, description, min_price, max_price,
			deadline, buyer_email, buyer_name, total_bid, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, 0, $10, $11
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.Title,
		job.Category,
		job.Description,
		job.MinPrice,
		job.MaxPrice,
		job.Deadline,
		job.BuyerEmail,
		job.BuyerName,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// ReplaceJob upserts a job under the given id. When no job with the id exists
// one is created honoring the id; otherwise the supplied fields overwrite
// prior values. The bid counter and creation date are never touched.
func (s *Storage) ReplaceJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, title, category, description, min_price, max_price,
			deadline, buyer_email, buyer_name, total_bid, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, 0, $10, $11
		)
		ON CONFLICT (job_id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			deadline = EXCLUDED.deadline,
			buyer_email = EXCLUDED.buyer_email,
			buyer_name = EXCLUDED.buyer_name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.Title,
		job.Category,
		job.Description,
		job.MinPrice,
		job.MaxPrice,
		job.Deadline,
		job.BuyerEmail,
		job.BuyerName,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to replace job: %w", err)
	}

	return nil
}

// GetJobByID retrieves a single job
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// DeleteJob removes a job and returns the number of rows affected
func (s *Storage) DeleteJob(ctx context.Context, jobID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// ListJobs returns every job, newest first. Used for public browsing.
func (s *Storage) ListJobs(ctx context.Context) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC, job_id DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// ListJobsByBuyer returns the jobs owned by a buyer. Callers must have
// authorized the principal against the buyer email first.
func (s *Storage) ListJobsByBuyer(ctx context.Context, buyerEmail string) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE buyer_email = $1 ORDER BY created_at DESC, job_id DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, buyerEmail); err != nil {
		return nil, fmt.Errorf("failed to list jobs by buyer: %w", err)
	}

	return jobs, nil
}

// JobFilter describes a public job search. An empty Search matches every
// title. PageSize <= 0 disables pagination and returns the full result set.
type JobFilter struct {
	Category string
	Search   string
	Sort     string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor marks a position in the (created_at, job_id) order
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// Ascending reports whether results are ordered by ascending creation date.
// "asc" sorts ascending; anything else sorts descending.
func (f JobFilter) Ascending() bool {
	return f.Sort == "asc"
}

// SearchJobs runs a filtered public job search
func (s *Storage) SearchJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query, args := buildSearchQuery(filter)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	return jobs, nil
}

// buildSearchQuery combines the title substring match, the optional category
// filter, the sort order, and the optional cursor into one statement. When
// paginating it fetches one extra row so the caller can detect more results.
func buildSearchQuery(filter JobFilter) (string, []interface{}) {
	var b strings.Builder

	// ILIKE against '%%' is universally true, so an empty search text
	// degenerates to "match all".
	b.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE title ILIKE '%' || $1 || '%'`)
	args := []interface{}{filter.Search}
	argIdx := 2

	if filter.Category != "" {
		fmt.Fprintf(&b, " AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}

	dir := "DESC"
	cmp := "<"
	if filter.Ascending() {
		dir = "ASC"
		cmp = ">"
	}

	if filter.Cursor != nil {
		fmt.Fprintf(&b, " AND (created_at, job_id) %s ($%d, $%d)", cmp, argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	fmt.Fprintf(&b, " ORDER BY created_at %s, job_id %s", dir, dir)

	if filter.PageSize > 0 {
		fmt.Fprintf(&b, " LIMIT $%d", argIdx)
		args = append(args, filter.PageSize+1)
	}

	return b.String(), args
}
