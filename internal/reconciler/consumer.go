package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer configures QoS and starts consuming bid events
func (r *Reconciler) setupConsumer() (<-chan amqp.Delivery, error) {
	channel := r.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// Per-consumer prefetch keeps one slow recompute from hogging the queue.
	err := channel.Qos(
		r.prefetchCount, // prefetch count
		0,               // prefetch size
		false,           // global
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := r.rabbitClient.Consume(r.reconcilerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	r.logger.Info("Bid event consumer started",
		slog.String("consumer_tag", r.reconcilerID),
		slog.Int("prefetch_count", r.prefetchCount),
	)

	return deliveries, nil
}

// startEventDispatcher parses deliveries and dispatches them to the pool
func (r *Reconciler) startEventDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	r.logger.Info("Event dispatcher started",
		slog.String("reconciler_id", r.reconcilerID),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Event dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				r.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var msg struct {
				JobID string `json:"job_id"`
			}

			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				r.logger.Error("Failed to parse bid event JSON",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// Malformed events are dropped, not requeued.
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					r.logger.Error("Failed to NACK malformed event",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if _, err := uuid.Parse(msg.JobID); err != nil {
				r.logger.Error("Invalid job_id in bid event - not a UUID",
					slog.String("job_id", msg.JobID),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					r.logger.Error("Failed to NACK event with invalid job_id",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			ev := &bidEvent{
				JobID:       msg.JobID,
				DeliveryTag: delivery.DeliveryTag,
			}

			select {
			case r.eventsChan <- ev:
				r.logger.Debug("Bid event dispatched",
					slog.String("job_id", msg.JobID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				r.logger.Info("Event dispatcher stopped while dispatching")
				// Requeue so another consumer picks it up.
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					r.logger.Error("Failed to NACK event on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
