package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/LuisGnzlz1/test-rimac-backend/pkg/cache"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
)

// RecordStore is the keyed record store the use cases depend on.
type RecordStore interface {
	Save(ctx context.Context, a *domain.Appointment) error
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	FindByInsuredID(ctx context.Context, insuredID string) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
}

// FanoutPublisher broadcasts a created appointment to the country queues.
type FanoutPublisher interface {
	PublishCreated(ctx context.Context, a *domain.Appointment) error
}

type AppointmentSvc struct {
	store    RecordStore
	pub      FanoutPublisher
	cache    cache.Cache // optional; nil disables the list cache
	cacheTTL time.Duration
}

func NewAppointmentSvc(store RecordStore, pub FanoutPublisher, c cache.Cache, cacheTTL time.Duration) *AppointmentSvc {
	return &AppointmentSvc{store: store, pub: pub, cache: c, cacheTTL: cacheTTL}
}

// Create writes the PENDING record and fans it out. Both the save and the
// publish are best-effort at this hop: the fan-out is the system of record
// going forward, so failures are logged and the appointment is still
// returned to the caller.
func (s *AppointmentSvc) Create(ctx context.Context, insuredID string, scheduleID int, countryISO domain.CountryISO) *domain.Appointment {
	a := domain.New(uuid.NewString(), insuredID, scheduleID, countryISO)

	if err := s.store.Save(ctx, a); err != nil {
		slog.ErrorContext(ctx, "appointment save failed", "appointment_id", a.ID(), "error", err)
	}
	if err := s.pub.PublishCreated(ctx, a); err != nil {
		slog.ErrorContext(ctx, "appointment fan-out failed", "appointment_id", a.ID(), "error", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.Key("list", insuredID)); err != nil {
			slog.WarnContext(ctx, "list cache invalidation failed", "insured_id", insuredID, "error", err)
		}
	}

	return a
}

// ListByInsured returns the insured's appointments, newest first.
func (s *AppointmentSvc) ListByInsured(ctx context.Context, insuredID string) ([]*domain.Appointment, error) {
	if s.cache != nil {
		if hit := s.fromCache(ctx, insuredID); hit != nil {
			return hit, nil
		}
	}

	appts, err := s.store.FindByInsuredID(ctx, insuredID)
	if err != nil {
		return nil, err
	}
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].CreatedAt().After(appts[j].CreatedAt())
	})

	if s.cache != nil {
		s.toCache(ctx, insuredID, appts)
	}
	return appts, nil
}

func (s *AppointmentSvc) fromCache(ctx context.Context, insuredID string) []*domain.Appointment {
	raw, err := s.cache.Get(ctx, s.cache.Key("list", insuredID))
	if err != nil || raw == "" {
		return nil
	}
	var snaps []domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snaps); err != nil {
		return nil
	}
	out := make([]*domain.Appointment, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, domain.Reconstitute(snap))
	}
	return out
}

func (s *AppointmentSvc) toCache(ctx context.Context, insuredID string, appts []*domain.Appointment) {
	snaps := make([]domain.Snapshot, 0, len(appts))
	for _, a := range appts {
		snaps = append(snaps, a.Snapshot())
	}
	b, err := json.Marshal(snaps)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.Key("list", insuredID), string(b), s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "list cache set failed", "insured_id", insuredID, "error", err)
	}
}
