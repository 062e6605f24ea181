package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/domain"
)

var ErrPublishUnavailable = errors.New("publish_unavailable")

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key string, v any, headers amqp.Table) error
}

// CompletionPublisher emits the structured "processed" event that closes
// the saga for one appointment.
type CompletionPublisher struct {
	pub jsonPublisher
}

func NewCompletionPublisher(pub jsonPublisher) *CompletionPublisher {
	return &CompletionPublisher{pub: pub}
}

func (p *CompletionPublisher) PublishProcessed(ctx context.Context, eventType string, rec domain.AppointmentRecord) error {
	detail := CompletionDetail{
		ID:          rec.ID,
		InsuredID:   rec.InsuredID,
		ScheduleID:  rec.ScheduleID,
		CountryISO:  rec.CountryISO,
		Status:      rec.Status,
		UpdatedAt:   rec.UpdatedAt,
		ProcessedAt: time.Now().UTC(),
	}
	if d := rec.ScheduleDetails; d != nil {
		detail.ScheduleDetails = &ScheduleDetailsPayload{
			ScheduleID:  d.ScheduleID,
			CenterID:    d.CenterID,
			SpecialtyID: d.SpecialtyID,
			MedicID:     d.MedicID,
			Date:        d.Date,
		}
	}
	env := CompletionEnvelope{
		Version:    "0",
		ID:         uuid.NewString(),
		DetailType: eventType,
		Source:     EventSource,
		Time:       time.Now().UTC(),
		Resources: []string{
			"appointment:" + rec.ID,
			"country:" + rec.CountryISO,
		},
		Detail: detail,
	}

	key := fmt.Sprintf("%s.%s", RKAppointmentProcessed, rec.CountryISO)
	headers := amqp.Table{
		"countryISO":    rec.CountryISO,
		"appointmentId": rec.ID,
	}
	if err := p.pub.PublishJSON(ctx, key, env, headers); err != nil {
		return fmt.Errorf("%w: completion %s: %v", ErrPublishUnavailable, rec.ID, err)
	}
	return nil
}
