package processor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/domain"
)

// Rule is a country-specific enrichment/validation step. A rule failure
// aborts the message the same way a store failure does.
type Rule interface {
	Name() string
	Apply(ctx context.Context, rec *domain.AppointmentRecord) error
}

// DefaultRules registers the known countries. Codes outside the map resolve
// to NoopRule at dispatch time.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"PE": peruRule{},
		"CL": chileRule{},
	}
}

var insuredIDPattern = regexp.MustCompile(`^\d{5}$`)

type peruRule struct{}

func (peruRule) Name() string { return "peru" }

func (peruRule) Apply(ctx context.Context, rec *domain.AppointmentRecord) error {
	if !insuredIDPattern.MatchString(rec.InsuredID) {
		return fmt.Errorf("peru: insuredId %q must be exactly 5 digits", rec.InsuredID)
	}
	slog.InfoContext(ctx, "peru rules applied", "appointment_id", rec.ID)
	return nil
}

type chileRule struct{}

func (chileRule) Name() string { return "chile" }

func (chileRule) Apply(ctx context.Context, rec *domain.AppointmentRecord) error {
	if rec.ScheduleID <= 0 {
		return fmt.Errorf("chile: scheduleId %d must be positive", rec.ScheduleID)
	}
	slog.InfoContext(ctx, "chile rules applied", "appointment_id", rec.ID)
	return nil
}

// NoopRule lets the saga complete for countries without registered logic.
type NoopRule struct{}

func (NoopRule) Name() string { return "noop" }

func (NoopRule) Apply(ctx context.Context, rec *domain.AppointmentRecord) error {
	return nil
}
