package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/solosphere/solosphere-be/internal/api/dto"
	"github.com/solosphere/solosphere-be/internal/api/model"
	"github.com/solosphere/solosphere-be/internal/api/storage"
	"github.com/solosphere/solosphere-be/internal/token"
)

// deadlineFormat is the wire format for job and bid deadlines
const deadlineFormat = "2006-01-02"

// JobStore is the job repository surface the handlers depend on
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	ReplaceJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	DeleteJob(ctx context.Context, jobID string) (int64, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListJobsByBuyer(ctx context.Context, buyerEmail string) ([]model.Job, error)
	SearchJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
}

// BidStore is the bid repository surface the handlers depend on
type BidStore interface {
	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBidByID(ctx context.Context, bidID string) (*model.Bid, error)
	ListBidsByWorker(ctx context.Context, workerEmail string) ([]model.Bid, error)
	ListBidsByBuyer(ctx context.Context, buyerEmail string) ([]model.Bid, error)
	UpdateBidStatus(ctx context.Context, bidID, from, to string) error
}

// EventPublisher publishes bid-created events for the counter reconciler
type EventPublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Jobs      JobStore
	Bids      BidStore
	Tokens    *token.Service
	Publisher EventPublisher
	// Production switches the identity cookie to Secure + SameSite=None.
	Production bool
}

// AuthHandler handles token issuance, revocation, and request authentication
type AuthHandler struct {
	logger     *slog.Logger
	tokens     *token.Service
	production bool
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger:     deps.Logger,
		tokens:     deps.Tokens,
		production: deps.Production,
	}
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger *slog.Logger
	jobs   JobStore
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		jobs:   deps.Jobs,
	}
}

// BidHandler handles bid-related HTTP requests
type BidHandler struct {
	logger    *slog.Logger
	jobs      JobStore
	bids      BidStore
	publisher EventPublisher
}

// NewBidHandler creates a new BidHandler instance
func NewBidHandler(deps *Dependencies) *BidHandler {
	return &BidHandler{
		logger:    deps.Logger,
		jobs:      deps.Jobs,
		bids:      deps.Bids,
		publisher: deps.Publisher,
	}
}

func jobToDTO(job *model.Job) dto.JobDTO {
	return dto.JobDTO{
		JobID:       job.JobID,
		Title:       job.Title,
		Category:    job.Category,
		Description: job.Description,
		MinPrice:    job.MinPrice,
		MaxPrice:    job.MaxPrice,
		Deadline:    job.Deadline.Format(deadlineFormat),
		Buyer: dto.BuyerDTO{
			Email: job.BuyerEmail,
			Name:  job.BuyerName,
		},
		TotalBid:  job.TotalBid,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
}

func jobsToDTO(jobs []model.Job) []dto.JobDTO {
	out := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		out[i] = jobToDTO(&jobs[i])
	}
	return out
}

func bidToDTO(bid *model.Bid) dto.BidDTO {
	return dto.BidDTO{
		BidID:       bid.BidID,
		JobID:       bid.JobID,
		WorkerEmail: bid.WorkerEmail,
		BuyerEmail:  bid.BuyerEmail,
		Price:       bid.Price,
		Deadline:    bid.Deadline.Format(deadlineFormat),
		Comment:     bid.Comment,
		Status:      bid.Status,
		CreatedAt:   bid.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   bid.UpdatedAt.Format(time.RFC3339),
	}
}

func bidsToDTO(bids []model.Bid) []dto.BidDTO {
	out := make([]dto.BidDTO, len(bids))
	for i := range bids {
		out[i] = bidToDTO(&bids[i])
	}
	return out
}
