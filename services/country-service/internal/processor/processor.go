package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/domain"
)

// ErrProcessingFailed is the uniform failure the processor surfaces so the
// transport redelivers the message. The underlying cause is classified in
// the log, never in the return value.
var ErrProcessingFailed = errors.New("appointment_processing_failed")

// ShardStore is the country-scoped relational store.
type ShardStore interface {
	Upsert(ctx context.Context, rec domain.AppointmentRecord) error
	FindByID(ctx context.Context, id string) (*domain.AppointmentRecord, error)
}

// CompletionPublisher emits the processed event that resumes the saga.
type CompletionPublisher interface {
	PublishProcessed(ctx context.Context, eventType string, rec domain.AppointmentRecord) error
}

type Processor struct {
	country string
	store   ShardStore
	pub     CompletionPublisher
	rules   map[string]Rule
	delay   time.Duration
}

// New builds a processor for one country shard. delay models the downstream
// confirmation step before the completion event goes out; tests pass ~0.
func New(country string, store ShardStore, pub CompletionPublisher, rules map[string]Rule, delay time.Duration) *Processor {
	return &Processor{country: country, store: store, pub: pub, rules: rules, delay: delay}
}

// Process drives one appointment through persist -> country rules ->
// confirmation delay -> completion publish. Any failure means no completion
// event was published and the caller must let the transport redeliver.
func (p *Processor) Process(ctx context.Context, rec domain.AppointmentRecord) error {
	if err := p.store.Upsert(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "processing failed",
			"stage", "store", "appointment_id", rec.ID, "country", p.country, "error", err)
		return fmt.Errorf("%w: %s", ErrProcessingFailed, rec.ID)
	}

	if err := p.applyCountryRules(ctx, &rec); err != nil {
		slog.ErrorContext(ctx, "processing failed",
			"stage", "rules", "appointment_id", rec.ID, "country", p.country, "error", err)
		return fmt.Errorf("%w: %s", ErrProcessingFailed, rec.ID)
	}

	if err := p.wait(ctx); err != nil {
		slog.WarnContext(ctx, "processing interrupted",
			"stage", "delay", "appointment_id", rec.ID, "error", err)
		return fmt.Errorf("%w: %s", ErrProcessingFailed, rec.ID)
	}

	if err := p.pub.PublishProcessed(ctx, "AppointmentProcessed", rec); err != nil {
		slog.ErrorContext(ctx, "processing failed",
			"stage", "publish", "appointment_id", rec.ID, "country", p.country, "error", err)
		return fmt.Errorf("%w: %s", ErrProcessingFailed, rec.ID)
	}

	slog.InfoContext(ctx, "appointment processed",
		"appointment_id", rec.ID, "country", p.country)
	return nil
}

func (p *Processor) applyCountryRules(ctx context.Context, rec *domain.AppointmentRecord) error {
	rule, ok := p.rules[rec.CountryISO]
	if !ok {
		// unknown country is a warning, not a failure; the saga still
		// completes
		rule = NoopRule{}
		slog.WarnContext(ctx, "no rules registered for country, using noop",
			"country", rec.CountryISO, "appointment_id", rec.ID)
	}
	return rule.Apply(ctx, rec)
}

// wait blocks for the configured delay but stays cancellable, so shutdown
// and tests never sit on an unbounded sleep.
func (p *Processor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
