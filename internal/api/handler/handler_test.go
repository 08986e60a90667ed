package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/solosphere/solosphere-be/internal/api/domain"
	"github.com/solosphere/solosphere-be/internal/api/handler"
	"github.com/solosphere/solosphere-be/internal/api/model"
	"github.com/solosphere/solosphere-be/internal/api/router"
	"github.com/solosphere/solosphere-be/internal/api/storage"
	"github.com/solosphere/solosphere-be/internal/token"
	"github.com/solosphere/solosphere-be/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is an in-memory JobStore + BidStore used by handler tests
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[string]*model.Job
	bids       map[string]*model.Bid
	searchHits []model.Job
	lastFilter storage.JobFilter
	err        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs: make(map[string]*model.Job),
		bids: make(map[string]*model.Bid),
	}
}

func (f *fakeStore) CreateJob(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	cp := *job
	f.jobs[job.JobID] = &cp
	return nil
}

func (f *fakeStore) ReplaceJob(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	cp := *job
	if existing, ok := f.jobs[job.JobID]; ok {
		cp.TotalBid = existing.TotalBid
		cp.CreatedAt = existing.CreatedAt
	}
	f.jobs[job.JobID] = &cp
	return nil
}

func (f *fakeStore) GetJobByID(_ context.Context, jobID string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) DeleteJob(_ context.Context, jobID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.jobs[jobID]; !ok {
		return 0, nil
	}
	delete(f.jobs, jobID)
	return 1, nil
}

func (f *fakeStore) ListJobs(_ context.Context) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := []model.Job{}
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (f *fakeStore) ListJobsByBuyer(_ context.Context, buyerEmail string) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := []model.Job{}
	for _, job := range f.jobs {
		if job.BuyerEmail == buyerEmail {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchJobs(_ context.Context, filter storage.JobFilter) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	return f.searchHits, nil
}

func (f *fakeStore) CreateBid(_ context.Context, bid *model.Bid) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	for _, existing := range f.bids {
		if existing.WorkerEmail == bid.WorkerEmail && existing.JobID == bid.JobID {
			return domain.ErrDuplicateBid
		}
	}

	job, ok := f.jobs[bid.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}

	cp := *bid
	f.bids[bid.BidID] = &cp
	job.TotalBid++
	return nil
}

func (f *fakeStore) GetBidByID(_ context.Context, bidID string) (*model.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	bid, ok := f.bids[bidID]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	cp := *bid
	return &cp, nil
}

func (f *fakeStore) ListBidsByWorker(_ context.Context, workerEmail string) ([]model.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := []model.Bid{}
	for _, bid := range f.bids {
		if bid.WorkerEmail == workerEmail {
			out = append(out, *bid)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBidsByBuyer(_ context.Context, buyerEmail string) ([]model.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := []model.Bid{}
	for _, bid := range f.bids {
		if bid.BuyerEmail == buyerEmail {
			out = append(out, *bid)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateBidStatus(_ context.Context, bidID, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	bid, ok := f.bids[bidID]
	if !ok || bid.Status != from {
		return domain.ErrInvalidTransition
	}
	bid.Status = to
	return nil
}

// fakePublisher records published bid events
type fakePublisher struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (f *fakePublisher) PublishWithRetry(_ context.Context, body []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, body)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	store     *fakeStore
	publisher *fakePublisher
	tokens    *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	publisher := &fakePublisher{}
	tokens := token.NewService("test-secret", token.DefaultTTL)

	deps := &handler.Dependencies{
		Logger:    logger.NewDefault().Logger,
		Jobs:      store,
		Bids:      store,
		Tokens:    tokens,
		Publisher: publisher,
	}

	return &testEnv{
		router:    router.SetupRouter(deps, []string{"http://localhost:5173"}),
		store:     store,
		publisher: publisher,
		tokens:    tokens,
	}
}

// do performs a request, optionally authenticated as the given principal
func (e *testEnv) do(t *testing.T, method, path string, body any, principal string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if principal != "" {
		signed, err := e.tokens.Issue(principal)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: signed})
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// newRawRequest builds a request carrying an arbitrary token cookie value
func newRawRequest(t *testing.T, method, path, rawToken string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: rawToken})
	return req
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedJob(t *testing.T, jobID, buyerEmail string) *model.Job {
	t.Helper()

	job := &model.Job{
		JobID:       jobID,
		Title:       "Design a logo",
		Category:    "design",
		Description: "Make it pop",
		MinPrice:    100,
		MaxPrice:    300,
		Deadline:    time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		BuyerEmail:  buyerEmail,
		BuyerName:   "Buyer",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, e.store.CreateJob(context.Background(), job))
	return job
}

func (e *testEnv) seedBid(t *testing.T, bidID, jobID, workerEmail, buyerEmail, status string) *model.Bid {
	t.Helper()

	bid := &model.Bid{
		BidID:       bidID,
		JobID:       jobID,
		WorkerEmail: workerEmail,
		BuyerEmail:  buyerEmail,
		Price:       150,
		Deadline:    time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	e.store.mu.Lock()
	e.store.bids[bidID] = bid
	e.store.mu.Unlock()
	return bid
}
