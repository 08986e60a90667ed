package handler_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solosphere/solosphere-be/internal/api/dto"
	"github.com/solosphere/solosphere-be/internal/api/handler"
	"github.com/solosphere/solosphere-be/internal/api/model"
)

func saveJobBody(buyerEmail string) dto.SaveJobRequest {
	return dto.SaveJobRequest{
		Title:       "Build a landing page",
		Category:    "web-development",
		Description: "Responsive, one page",
		MinPrice:    200,
		MaxPrice:    500,
		Deadline:    "2026-12-31",
		Buyer:       dto.BuyerDTO{Email: buyerEmail, Name: "Buyer"},
	}
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/add-job", saveJobBody("buyer@example.com"), "buyer@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.JobDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.JobID)
	assert.Equal(t, "Build a landing page", got.Title)
	assert.Equal(t, "buyer@example.com", got.Buyer.Email)
	assert.Zero(t, got.TotalBid)

	stored, ok := env.store.jobs[got.JobID]
	require.True(t, ok, "job should be persisted")
	assert.Equal(t, "web-development", stored.Category)
}

func TestCreateJob_Rejections(t *testing.T) {
	env := newTestEnv(t)

	t.Run("buyer email differs from principal", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/add-job", saveJobBody("someone-else@example.com"), "buyer@example.com")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, env.store.jobs)
	})

	t.Run("max price below min price", func(t *testing.T) {
		body := saveJobBody("buyer@example.com")
		body.MinPrice = 500
		body.MaxPrice = 100
		w := env.do(t, http.MethodPost, "/add-job", body, "buyer@example.com")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad deadline format", func(t *testing.T) {
		body := saveJobBody("buyer@example.com")
		body.Deadline = "31/12/2026"
		w := env.do(t, http.MethodPost, "/add-job", body, "buyer@example.com")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReplaceJob(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob(t, uuid.New().String(), "buyer@example.com")

	t.Run("owner overwrites fields", func(t *testing.T) {
		body := saveJobBody("buyer@example.com")
		body.Title = "Redesign the logo"
		w := env.do(t, http.MethodPut, "/update-job/"+job.JobID, body, "buyer@example.com")
		require.Equal(t, http.StatusOK, w.Code)

		stored := env.store.jobs[job.JobID]
		assert.Equal(t, "Redesign the logo", stored.Title)
	})

	t.Run("non-owner cannot overwrite", func(t *testing.T) {
		body := saveJobBody("intruder@example.com")
		w := env.do(t, http.MethodPut, "/update-job/"+job.JobID, body, "intruder@example.com")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		stored := env.store.jobs[job.JobID]
		assert.Equal(t, "buyer@example.com", stored.BuyerEmail)
	})

	t.Run("absent id creates the job", func(t *testing.T) {
		newID := uuid.New().String()
		w := env.do(t, http.MethodPut, "/update-job/"+newID, saveJobBody("buyer@example.com"), "buyer@example.com")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, env.store.jobs, newID)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/update-job/not-a-uuid", saveJobBody("buyer@example.com"), "buyer@example.com")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetJob(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob(t, uuid.New().String(), "buyer@example.com")

	t.Run("found, no auth needed", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/job/"+job.JobID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var got dto.JobDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, job.JobID, got.JobID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/job/"+uuid.New().String(), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteJob(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob(t, uuid.New().String(), "buyer@example.com")

	t.Run("non-owner gets 401 and job survives", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/job/"+job.JobID, nil, "intruder@example.com")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, env.store.jobs, job.JobID)
	})

	t.Run("owner deletes", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/job/"+job.JobID, nil, "buyer@example.com")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"acknowledged":true,"deleted_count":1}`, w.Body.String())
		assert.NotContains(t, env.store.jobs, job.JobID)
	})

	t.Run("already gone", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/job/"+job.JobID, nil, "buyer@example.com")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListJobsByBuyer_OnlyOwnJobs(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, uuid.New().String(), "alice@example.com")
	env.seedJob(t, uuid.New().String(), "alice@example.com")
	env.seedJob(t, uuid.New().String(), "bob@example.com")

	w := env.do(t, http.MethodGet, "/jobs/alice@example.com", nil, "alice@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	var got []dto.JobDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	for _, j := range got {
		assert.Equal(t, "alice@example.com", j.Buyer.Email)
	}
}

func searchJobs(n int) []model.Job {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i] = model.Job{
			JobID:      uuid.New().String(),
			Title:      "Job",
			Category:   "design",
			Deadline:   base.AddDate(0, 1, 0),
			BuyerEmail: "buyer@example.com",
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
			UpdatedAt:  base,
		}
	}
	return jobs
}

func TestSearchJobs(t *testing.T) {
	t.Run("without page_size returns plain array", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.searchHits = searchJobs(3)

		w := env.do(t, http.MethodGet, "/all-jobs?search=logo&filter=design&sort=asc", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []dto.JobDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 3)

		assert.Equal(t, "logo", env.store.lastFilter.Search)
		assert.Equal(t, "design", env.store.lastFilter.Category)
		assert.True(t, env.store.lastFilter.Ascending())
		assert.Zero(t, env.store.lastFilter.PageSize)
	})

	t.Run("with page_size wraps and emits next_cursor", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.searchHits = searchJobs(3)

		w := env.do(t, http.MethodGet, "/all-jobs?page_size=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var got dto.SearchJobsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Jobs, 2)
		require.NotEmpty(t, got.NextCursor)

		cursor, err := handler.DecodeJobCursor(got.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, got.Jobs[1].JobID, cursor.JobID)
	})

	t.Run("last page has no next_cursor", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.searchHits = searchJobs(2)

		w := env.do(t, http.MethodGet, "/all-jobs?page_size=5", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var got dto.SearchJobsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Jobs, 2)
		assert.Empty(t, got.NextCursor)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/all-jobs?page_size=5&cursor="+url.QueryEscape("!!!not-base64!!!"), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("page_size capped at 100", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.searchHits = searchJobs(1)

		w := env.do(t, http.MethodGet, "/all-jobs?page_size=5000", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 100, env.store.lastFilter.PageSize)
	})
}
