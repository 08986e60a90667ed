package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solosphere/solosphere-be/internal/api/domain"
	"github.com/solosphere/solosphere-be/internal/api/dto"
	"github.com/solosphere/solosphere-be/internal/api/model"
)

// duplicateBidMessage is the response body for a repeated submission
const duplicateBidMessage = "Already Applied on this job!"

// bidCreatedEvent is published for the counter reconciler
type bidCreatedEvent struct {
	JobID string `json:"job_id"`
}

// CreateBid handles POST /add-bid
// Persists a new bid with status pending and increments the job's bid counter
func (h *BidHandler) CreateBid(c *gin.Context) {
	var req dto.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !Authorize(c, req.Email) {
		return
	}

	if _, err := uuid.Parse(req.JobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobID must be a valid UUID"})
		return
	}

	deadline, err := time.Parse(deadlineFormat, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be formatted as YYYY-MM-DD"})
		return
	}

	job, err := h.jobs.GetJobByID(c.Request.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to load job for bid", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bid"})
		return
	}

	if job.BuyerEmail == req.Email {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Buyers cannot bid on their own jobs"})
		return
	}

	now := time.Now()
	bid := model.Bid{
		BidID:       uuid.New().String(),
		JobID:       job.JobID,
		WorkerEmail: req.Email,
		BuyerEmail:  job.BuyerEmail,
		Price:       req.Price,
		Deadline:    deadline,
		Comment:     req.Comment,
		Status:      domain.BidStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.bids.CreateBid(c.Request.Context(), &bid); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateBid):
			c.String(http.StatusBadRequest, duplicateBidMessage)
		case errors.Is(err, domain.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		default:
			h.logger.Error("Failed to create bid", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bid"})
		}
		return
	}

	h.publishBidCreated(c.Request.Context(), job.JobID)

	c.JSON(http.StatusOK, bidToDTO(&bid))
}

// publishBidCreated emits a reconciliation event. Failures are logged, not
// surfaced: the bid is already committed and the periodic sweep covers gaps.
func (h *BidHandler) publishBidCreated(ctx context.Context, jobID string) {
	if h.publisher == nil {
		return
	}

	body, err := json.Marshal(bidCreatedEvent{JobID: jobID})
	if err != nil {
		h.logger.Error("Failed to marshal bid event", slog.String("error", err.Error()))
		return
	}

	if err := h.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
		h.logger.Error("Failed to publish bid event",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

// ListBidsByWorker handles GET /bids/:email
// Returns the bids the authenticated worker has submitted
func (h *BidHandler) ListBidsByWorker(c *gin.Context) {
	email := c.Param("email")

	if !Authorize(c, email) {
		return
	}

	bids, err := h.bids.ListBidsByWorker(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("Failed to list bids by worker", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bids"})
		return
	}

	c.JSON(http.StatusOK, bidsToDTO(bids))
}

// ListBidsByBuyer handles GET /bid-request/:email
// Returns the bids placed against the authenticated buyer's jobs
func (h *BidHandler) ListBidsByBuyer(c *gin.Context) {
	email := c.Param("email")

	if !Authorize(c, email) {
		return
	}

	bids, err := h.bids.ListBidsByBuyer(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("Failed to list bids by buyer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bids"})
		return
	}

	c.JSON(http.StatusOK, bidsToDTO(bids))
}

// UpdateBidStatus handles PATCH /update-bidStatus/:id
// Only the job's buyer may move a bid along the forward-only status graph
func (h *BidHandler) UpdateBidStatus(c *gin.Context) {
	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	var req dto.UpdateBidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !domain.ValidBidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown bid status"})
		return
	}

	bid, err := h.bids.GetBidByID(c.Request.Context(), bidID)
	if err != nil {
		if errors.Is(err, domain.ErrBidNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bid not found"})
			return
		}
		h.logger.Error("Failed to load bid", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bid status"})
		return
	}

	if !Authorize(c, bid.BuyerEmail) {
		return
	}

	if !domain.CanTransition(bid.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Illegal status transition",
			"from":  bid.Status,
			"to":    req.Status,
		})
		return
	}

	if err := h.bids.UpdateBidStatus(c.Request.Context(), bidID, bid.Status, req.Status); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// A concurrent update won; the observed status is stale.
			c.JSON(http.StatusConflict, gin.H{"error": "Illegal status transition"})
			return
		}
		h.logger.Error("Failed to update bid status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bid status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"acknowledged": true,
		"bid_id":       bidID,
		"status":       req.Status,
	})
}
