package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LuisGnzlz1/test-rimac-backend/pkg/mq"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/events"
)

// ErrUnparseable marks a completion message that matched neither the
// envelope nor the bare-detail shape.
var ErrUnparseable = errors.New("completion_message_unparseable")

// RecordStore is the slice of the keyed store this consumer needs.
type RecordStore interface {
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
}

// CompletionConsumer drives the last hop of the saga: it moves the original
// record to COMPLETED when a country shard reports the appointment as
// processed. Deliveries are at-least-once and may be reordered, so every
// step here is idempotent.
type CompletionConsumer struct {
	store RecordStore
	cons  *mq.Consumer
}

func NewCompletionConsumer(store RecordStore, cons *mq.Consumer) *CompletionConsumer {
	return &CompletionConsumer{store: store, cons: cons}
}

type parseShape int

const (
	shapeEnvelope parseShape = iota
	shapeRawDetail
	shapeUnparseable
)

// parseCompletion decides the message shape exactly once: structured
// envelope first, bare detail as fallback, unparseable otherwise.
func parseCompletion(body []byte) (events.CompletionDetail, parseShape) {
	var env events.CompletionEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Detail.ID != "" {
		return env.Detail, shapeEnvelope
	}

	var detail events.CompletionDetail
	if err := json.Unmarshal(body, &detail); err == nil && detail.ID != "" {
		return detail, shapeRawDetail
	}

	return events.CompletionDetail{}, shapeUnparseable
}

// Handle processes one completion message.
//
// Policy per outcome:
//   - unparseable        -> ErrUnparseable (dead-letter, do not requeue)
//   - record not found   -> nil (not an error; creation may not be visible yet)
//   - already completed  -> nil (idempotent skip, no write)
//   - invalid transition -> error (genuine defect, surfaced)
//   - store lookup error -> error (retryable)
//   - update error after the in-memory transition -> logged, swallowed
func (c *CompletionConsumer) Handle(ctx context.Context, body []byte) error {
	detail, shape := parseCompletion(body)
	switch shape {
	case shapeUnparseable:
		return fmt.Errorf("%w: %.200s", ErrUnparseable, string(body))
	case shapeRawDetail:
		slog.WarnContext(ctx, "completion message missing envelope, using raw body", "appointment_id", detail.ID)
	}

	appt, err := c.store.FindByID(ctx, detail.ID)
	if err != nil {
		return fmt.Errorf("find appointment %s: %w", detail.ID, err)
	}
	if appt == nil {
		slog.WarnContext(ctx, "appointment not found, skipping completion", "appointment_id", detail.ID)
		return nil
	}

	if appt.Status() == domain.StatusCompleted {
		slog.InfoContext(ctx, "appointment already completed, skipping", "appointment_id", detail.ID)
		return nil
	}

	if err := appt.TransitionTo(domain.StatusCompleted); err != nil {
		return fmt.Errorf("transition appointment %s: %w", detail.ID, err)
	}

	if err := c.store.Update(ctx, appt); err != nil {
		// the transition itself was valid, only the write failed; the row
		// stays pending until the country side republishes, so log and
		// ack rather than bounce the message
		slog.ErrorContext(ctx, "persist completed status failed", "appointment_id", detail.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "appointment completed", "appointment_id", detail.ID)
	return nil
}

// Run consumes completion deliveries until ctx is done. Each delivery is
// acked or nacked on its own, so one bad message never blocks the rest.
func (c *CompletionConsumer) Run(ctx context.Context) error {
	msgs, err := c.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			c.handleDelivery(ctx, d)
		}
	}()
	return nil
}

func (c *CompletionConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	err := c.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrUnparseable), errors.Is(err, domain.ErrInvalidTransition):
		// defects go to the DLQ; redelivery cannot fix them
		slog.Error("completion message rejected", "error", err)
		_ = d.Nack(false, false)
	default:
		// transient (store lookup failed); let the broker redeliver
		slog.Error("completion message failed, requeueing", "error", err)
		_ = d.Nack(false, true)
	}
}
