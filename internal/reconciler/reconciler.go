package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solosphere/solosphere-be/shared/rabbitmq"
)

// CounterStore is the persistence surface the reconciler depends on
type CounterStore interface {
	RecomputeBidCount(ctx context.Context, jobID string) (int64, error)
	ListDriftedJobIDs(ctx context.Context) ([]string, error)
}

// Config holds reconciler configuration
type Config struct {
	Logger        *slog.Logger
	Storage       CounterStore
	RabbitClient  *rabbitmq.Client
	Concurrency   int
	SweepInterval time.Duration
	PrefetchCount int
}

// bidEvent is a bid-created event pulled off the queue
type bidEvent struct {
	JobID       string
	DeliveryTag uint64
}

// Reconciler keeps job bid counters consistent with the bids table. It
// repairs targeted jobs as bid-created events arrive and sweeps the whole
// table on an interval to catch anything the event stream missed.
type Reconciler struct {
	logger        *slog.Logger
	storage       CounterStore
	rabbitClient  *rabbitmq.Client
	concurrency   int
	sweepInterval time.Duration
	prefetchCount int
	reconcilerID  string
	eventsChan    chan *bidEvent
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// New creates a new reconciler instance
func New(cfg *Config) *Reconciler {
	return &Reconciler{
		logger:        cfg.Logger,
		storage:       cfg.Storage,
		rabbitClient:  cfg.RabbitClient,
		concurrency:   cfg.Concurrency,
		sweepInterval: cfg.SweepInterval,
		prefetchCount: cfg.PrefetchCount,
		reconcilerID:  fmt.Sprintf("reconciler-%s", uuid.New().String()[:8]),
		eventsChan:    make(chan *bidEvent),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming bid events and sweeping for drift. Blocks until the
// context is canceled.
func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("Starting reconciler",
		slog.String("reconciler_id", r.reconcilerID),
		slog.Int("concurrency", r.concurrency),
		slog.Duration("sweep_interval", r.sweepInterval),
	)

	deliveries, err := r.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	r.spawnWorkerPool(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.startEventDispatcher(ctx, deliveries)
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sweepLoop(ctx)
	}()

	<-ctx.Done()
	r.logger.Info("Reconciler context canceled, stopping...")

	return nil
}

// Stop gracefully stops the reconciler
func (r *Reconciler) Stop() {
	r.logger.Info("Stopping reconciler...")
	close(r.stopChan)
	r.wg.Wait()
	r.logger.Info("Reconciler stopped")
}

// reconcile repairs a single job's bid counter
func (r *Reconciler) reconcile(ctx context.Context, jobID string) error {
	repaired, err := r.storage.RecomputeBidCount(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to reconcile job %s: %w", jobID, err)
	}

	if repaired > 0 {
		r.logger.Info("Bid counter repaired",
			slog.String("job_id", jobID),
		)
	} else {
		r.logger.Debug("Bid counter consistent",
			slog.String("job_id", jobID),
		)
	}

	return nil
}

// sweepLoop periodically repairs every drifted counter
func (r *Reconciler) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.runSweep(ctx); err != nil {
				r.logger.Error("Sweep failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// runSweep repairs all counters that disagree with the bids table
func (r *Reconciler) runSweep(ctx context.Context) error {
	jobIDs, err := r.storage.ListDriftedJobIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to find drifted counters: %w", err)
	}

	if len(jobIDs) == 0 {
		r.logger.Debug("Sweep found no drifted counters")
		return nil
	}

	r.logger.Warn("Sweep found drifted counters",
		slog.Int("count", len(jobIDs)),
	)

	for _, jobID := range jobIDs {
		if err := r.reconcile(ctx, jobID); err != nil {
			return err
		}
	}

	return nil
}
