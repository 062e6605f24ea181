package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LuisGnzlz1/test-rimac-backend/pkg/mq"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/domain"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/events"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/processor"
)

// AppointmentConsumer feeds this shard's fan-out queue into the processor.
// Deliveries are handled in their own goroutines (bounded by the channel's
// prefetch window) so the per-message confirmation delay never blocks the
// rest of a batch.
type AppointmentConsumer struct {
	proc *processor.Processor
	cons *mq.Consumer
}

func NewAppointmentConsumer(proc *processor.Processor, cons *mq.Consumer) *AppointmentConsumer {
	return &AppointmentConsumer{proc: proc, cons: cons}
}

func (c *AppointmentConsumer) Run(ctx context.Context) error {
	msgs, err := c.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			go c.handleDelivery(ctx, d)
		}
	}()
	return nil
}

func (c *AppointmentConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var msg events.AppointmentCreated
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.ID == "" {
		slog.Error("fan-out message unparseable", "routing_key", d.RoutingKey, "error", err)
		_ = d.Nack(false, false)
		return
	}

	rec := domain.AppointmentRecord{
		ID:         msg.ID,
		InsuredID:  msg.InsuredID,
		ScheduleID: msg.ScheduleID,
		CountryISO: msg.CountryISO,
		Status:     msg.Status,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  msg.UpdatedAt,
	}

	if err := c.proc.Process(ctx, rec); err != nil {
		// uniform processing failure: rely on broker redelivery
		slog.Error("appointment processing failed, requeueing",
			"appointment_id", msg.ID, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
