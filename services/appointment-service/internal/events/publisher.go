package events

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
)

// ErrPublishUnavailable wraps channel I/O failures. The create flow treats
// them as best-effort; consumers of this error decide the policy.
var ErrPublishUnavailable = errors.New("publish_unavailable")

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key string, v any, headers amqp.Table) error
}

// FanoutPublisher broadcasts newly created appointments to the per-country
// subscribers via the topic exchange.
type FanoutPublisher struct {
	pub jsonPublisher
}

func NewFanoutPublisher(pub jsonPublisher) *FanoutPublisher {
	return &FanoutPublisher{pub: pub}
}

func (p *FanoutPublisher) PublishCreated(ctx context.Context, a *domain.Appointment) error {
	s := a.Snapshot()
	msg := AppointmentCreated{
		ID:         s.ID,
		InsuredID:  s.InsuredID,
		ScheduleID: s.ScheduleID,
		CountryISO: string(s.CountryISO),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	key := fmt.Sprintf("%s.%s", RKAppointmentCreated, s.CountryISO)
	headers := amqp.Table{
		"countryISO":    string(s.CountryISO),
		"appointmentId": s.ID,
	}
	if err := p.pub.PublishJSON(ctx, key, msg, headers); err != nil {
		return fmt.Errorf("%w: fan-out %s: %v", ErrPublishUnavailable, s.ID, err)
	}
	return nil
}
