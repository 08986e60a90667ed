package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solosphere/solosphere-be/shared/logger"
)

type fakeCounterStore struct {
	mu         sync.Mutex
	recomputed []string
	repaired   map[string]int64
	drifted    []string
	err        error
}

func (f *fakeCounterStore) RecomputeBidCount(_ context.Context, jobID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}

	f.recomputed = append(f.recomputed, jobID)
	return f.repaired[jobID], nil
}

func (f *fakeCounterStore) ListDriftedJobIDs(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.drifted, nil
}

func newTestReconciler(store CounterStore) *Reconciler {
	return New(&Config{
		Logger:  logger.NewDefault().Logger,
		Storage: store,
	})
}

func TestReconcile(t *testing.T) {
	t.Run("repaired counter", func(t *testing.T) {
		store := &fakeCounterStore{repaired: map[string]int64{"job-1": 1}}
		r := newTestReconciler(store)

		err := r.reconcile(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"job-1"}, store.recomputed)
	})

	t.Run("consistent counter", func(t *testing.T) {
		store := &fakeCounterStore{}
		r := newTestReconciler(store)

		err := r.reconcile(context.Background(), "job-2")
		require.NoError(t, err)
		assert.Equal(t, []string{"job-2"}, store.recomputed)
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := &fakeCounterStore{err: errors.New("connection reset")}
		r := newTestReconciler(store)

		err := r.reconcile(context.Background(), "job-3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "job-3")
	})
}

func TestRunSweep(t *testing.T) {
	t.Run("repairs every drifted job", func(t *testing.T) {
		store := &fakeCounterStore{
			drifted:  []string{"job-a", "job-b", "job-c"},
			repaired: map[string]int64{"job-a": 1, "job-b": 1, "job-c": 1},
		}
		r := newTestReconciler(store)

		err := r.runSweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"job-a", "job-b", "job-c"}, store.recomputed)
	})

	t.Run("no drift is a no-op", func(t *testing.T) {
		store := &fakeCounterStore{}
		r := newTestReconciler(store)

		err := r.runSweep(context.Background())
		require.NoError(t, err)
		assert.Empty(t, store.recomputed)
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := &fakeCounterStore{err: errors.New("connection reset")}
		r := newTestReconciler(store)

		err := r.runSweep(context.Background())
		require.Error(t, err)
	})
}
