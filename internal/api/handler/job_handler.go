package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solosphere/solosphere-be/internal/api/domain"
	"github.com/solosphere/solosphere-be/internal/api/dto"
	"github.com/solosphere/solosphere-be/internal/api/model"
	"github.com/solosphere/solosphere-be/internal/api/storage"
)

// CreateJob handles POST /add-job
// Persists a new job owned by the authenticated buyer
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.SaveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !Authorize(c, req.Buyer.Email) {
		return
	}

	deadline, err := time.Parse(deadlineFormat, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be formatted as YYYY-MM-DD"})
		return
	}

	now := time.Now()
	job := model.Job{
		JobID:       uuid.New().String(),
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Deadline:    deadline,
		BuyerEmail:  req.Buyer.Email,
		BuyerName:   req.Buyer.Name,
		TotalBid:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.jobs.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}

	c.JSON(http.StatusOK, jobToDTO(&job))
}

// ReplaceJob handles PUT /update-job/:id
// Upserts a job under the given id: absent jobs are created honoring the id,
// existing jobs get all supplied fields overwritten
func (h *JobHandler) ReplaceJob(c *gin.Context) {
	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	var req dto.SaveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !Authorize(c, req.Buyer.Email) {
		return
	}

	deadline, err := time.Parse(deadlineFormat, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be formatted as YYYY-MM-DD"})
		return
	}

	// When the job already exists it must belong to the principal; otherwise
	// anyone could overwrite it by claiming their own buyer email.
	existing, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	switch {
	case err == nil:
		if !Authorize(c, existing.BuyerEmail) {
			return
		}
	case errors.Is(err, domain.ErrJobNotFound):
		// Upsert will create it.
	default:
		h.logger.Error("Failed to load job for replace", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		return
	}

	now := time.Now()
	job := model.Job{
		JobID:       jobID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Deadline:    deadline,
		BuyerEmail:  req.Buyer.Email,
		BuyerName:   req.Buyer.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.jobs.ReplaceJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to replace job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "job_id": jobID})
}

// GetJob handles GET /job/:id
// Retrieves a single job for public viewing
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	job, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job"})
		return
	}

	c.JSON(http.StatusOK, jobToDTO(job))
}

// DeleteJob handles DELETE /job/:id
// Only the owning buyer may delete a job
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	job, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to load job for delete", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
		return
	}

	if !Authorize(c, job.BuyerEmail) {
		return
	}

	deleted, err := h.jobs.DeleteJob(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to delete job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "deleted_count": deleted})
}

// ListJobs handles GET /jobs
// Unrestricted listing used for public browsing
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, jobsToDTO(jobs))
}

// ListJobsByBuyer handles GET /jobs/:email
// Returns the jobs owned by the authenticated buyer
func (h *JobHandler) ListJobsByBuyer(c *gin.Context) {
	email := c.Param("email")

	if !Authorize(c, email) {
		return
	}

	jobs, err := h.jobs.ListJobsByBuyer(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("Failed to list jobs by buyer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, jobsToDTO(jobs))
}

// SearchJobs handles GET /all-jobs
// Public filtered search. Without page_size the full result set comes back as
// a plain array; with page_size the response is wrapped with a next cursor.
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	filter := storage.JobFilter{
		Category: req.Filter,
		Search:   req.Search,
		Sort:     req.Sort,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	jobs, err := h.jobs.SearchJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to search jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search jobs"})
		return
	}

	if req.PageSize <= 0 {
		c.JSON(http.StatusOK, jobsToDTO(jobs))
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	var nextCursor string
	if hasMore {
		last := jobs[len(jobs)-1]
		nextCursor, err = EncodeJobCursor(&storage.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
		if err != nil {
			h.logger.Error("Failed to encode next cursor", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode next cursor"})
			return
		}
	}

	c.JSON(http.StatusOK, dto.SearchJobsResponse{
		Jobs:       jobsToDTO(jobs),
		NextCursor: nextCursor,
	})
}
