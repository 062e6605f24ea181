package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
)

// ErrStoreUnavailable wraps any keyed-store I/O failure. Callers decide
// whether it is fatal: the create flow swallows it, the status-update flow
// does not.
var ErrStoreUnavailable = errors.New("record_store_unavailable")

// AppointmentModel is the keyed-store row. Schedule detail columns are
// nullable because details only exist once the country pipeline ran.
type AppointmentModel struct {
	ID              string `gorm:"primaryKey"`
	InsuredID       string `gorm:"index"`
	ScheduleID      int
	CountryISO      string
	Status          string `gorm:"index"`
	CenterID        *int
	SpecialtyID     *int
	MedicID         *int
	AppointmentDate *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (AppointmentModel) TableName() string { return "appointments" }

type AppointmentRepo struct{ db *gorm.DB }

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Migrate() error {
	return r.db.AutoMigrate(&AppointmentModel{})
}

func (r *AppointmentRepo) Save(ctx context.Context, a *domain.Appointment) error {
	m := toModel(a.Snapshot())
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStoreUnavailable, m.ID, err)
	}
	return nil
}

// FindByID returns (nil, nil) when the record does not exist.
func (r *AppointmentRepo) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var m AppointmentModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", ErrStoreUnavailable, id, err)
	}
	return domain.Reconstitute(toSnapshot(m)), nil
}

// FindByInsuredID returns the matching appointments in store order; the use
// case sorts.
func (r *AppointmentRepo) FindByInsuredID(ctx context.Context, insuredID string) ([]*domain.Appointment, error) {
	var rows []AppointmentModel
	if err := r.db.WithContext(ctx).Where("insured_id = ?", insuredID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find by insured %s: %v", ErrStoreUnavailable, insuredID, err)
	}
	out := make([]*domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Reconstitute(toSnapshot(m)))
	}
	return out, nil
}

// Update replaces the mutable fields (status, updatedAt) of an existing row.
func (r *AppointmentRepo) Update(ctx context.Context, a *domain.Appointment) error {
	s := a.Snapshot()
	err := r.db.WithContext(ctx).
		Model(&AppointmentModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"status":     string(s.Status),
			"updated_at": s.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrStoreUnavailable, s.ID, err)
	}
	return nil
}

func toModel(s domain.Snapshot) AppointmentModel {
	m := AppointmentModel{
		ID:         s.ID,
		InsuredID:  s.InsuredID,
		ScheduleID: s.ScheduleID,
		CountryISO: string(s.CountryISO),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if d := s.ScheduleDetails; d != nil {
		m.CenterID = &d.CenterID
		m.SpecialtyID = &d.SpecialtyID
		m.MedicID = &d.MedicID
		date := d.Date
		m.AppointmentDate = &date
	}
	return m
}

func toSnapshot(m AppointmentModel) domain.Snapshot {
	s := domain.Snapshot{
		ID:         m.ID,
		InsuredID:  m.InsuredID,
		ScheduleID: m.ScheduleID,
		CountryISO: domain.CountryISO(m.CountryISO),
		Status:     domain.Status(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	// details are all-or-nothing; a row with partial columns is treated as
	// having none
	if m.CenterID != nil && m.SpecialtyID != nil && m.MedicID != nil && m.AppointmentDate != nil {
		s.ScheduleDetails = &domain.ScheduleDetails{
			ScheduleID:  m.ScheduleID,
			CenterID:    *m.CenterID,
			SpecialtyID: *m.SpecialtyID,
			MedicID:     *m.MedicID,
			Date:        *m.AppointmentDate,
		}
	}
	return s
}
