package reconciler

import (
	"context"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N goroutines draining the event channel
func (r *Reconciler) spawnWorkerPool(ctx context.Context) {
	r.logger.Info("Spawning reconciler pool",
		slog.Int("concurrency", r.concurrency),
	)

	for i := 0; i < r.concurrency; i++ {
		r.wg.Add(1)
		go r.workerLoop(ctx, i)
	}
}

// workerLoop is the processing loop for each pool goroutine
func (r *Reconciler) workerLoop(ctx context.Context, workerNum int) {
	defer r.wg.Done()

	workerName := fmt.Sprintf("%s-%d", r.reconcilerID, workerNum)
	r.logger.Info("Reconciler goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-r.stopChan:
			r.logger.Info("Reconciler goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			r.logger.Info("Reconciler goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case ev, ok := <-r.eventsChan:
			if !ok {
				return
			}

			err := r.reconcile(ctx, ev.JobID)

			channel := r.rabbitClient.GetChannel()
			if channel == nil {
				r.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("job_id", ev.JobID),
				)
				continue
			}

			if err != nil {
				r.logger.Error("Reconciliation failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", ev.JobID),
					slog.String("error", err.Error()),
				)

				// Store errors are transient; requeue for another attempt.
				if nackErr := channel.Nack(ev.DeliveryTag, false, true); nackErr != nil {
					r.logger.Error("Failed to NACK event",
						slog.String("worker_name", workerName),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ackErr := channel.Ack(ev.DeliveryTag, false); ackErr != nil {
				r.logger.Error("Failed to ACK event",
					slog.String("worker_name", workerName),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}
