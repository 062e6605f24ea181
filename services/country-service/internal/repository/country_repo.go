package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/domain"
)

// ErrStoreUnavailable wraps relational-store I/O failures. Losing the
// country-authoritative record is unacceptable, so callers must treat this
// as fatal to the current message.
var ErrStoreUnavailable = errors.New("relational_store_unavailable")

type AppointmentModel struct {
	ID              string `gorm:"primaryKey"`
	InsuredID       string `gorm:"index"`
	ScheduleID      int
	CountryISO      string `gorm:"index"`
	Status          string
	CenterID        *int
	SpecialtyID     *int
	MedicID         *int
	AppointmentDate *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (AppointmentModel) TableName() string { return "appointments" }

// CountryRepo persists one country's appointment shard. The pool is owned
// by this shard's deployment and never shared across countries.
type CountryRepo struct {
	db      *gorm.DB
	country string
}

func NewCountryRepo(db *gorm.DB, country string) *CountryRepo {
	return &CountryRepo{db: db, country: country}
}

func (r *CountryRepo) Migrate() error {
	return r.db.AutoMigrate(&AppointmentModel{})
}

// Upsert inserts the record or, on id conflict, updates the mutable fields.
// Safe to call repeatedly with the same id; redeliveries never duplicate
// rows.
func (r *CountryRepo) Upsert(ctx context.Context, rec domain.AppointmentRecord) error {
	m := toModel(rec)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "center_id", "specialty_id", "medic_id",
				"appointment_date", "updated_at",
			}),
		}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrStoreUnavailable, rec.ID, err)
	}
	return nil
}

// FindByID is scoped to this shard's country; rows written by other shards
// are invisible.
func (r *CountryRepo) FindByID(ctx context.Context, id string) (*domain.AppointmentRecord, error) {
	var m AppointmentModel
	err := r.db.WithContext(ctx).
		First(&m, "id = ? AND country_iso = ?", id, r.country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", ErrStoreUnavailable, id, err)
	}
	rec := toRecord(m)
	return &rec, nil
}

func toModel(rec domain.AppointmentRecord) AppointmentModel {
	m := AppointmentModel{
		ID:         rec.ID,
		InsuredID:  rec.InsuredID,
		ScheduleID: rec.ScheduleID,
		CountryISO: rec.CountryISO,
		Status:     rec.Status,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if d := rec.ScheduleDetails; d != nil {
		m.CenterID = &d.CenterID
		m.SpecialtyID = &d.SpecialtyID
		m.MedicID = &d.MedicID
		date := d.Date
		m.AppointmentDate = &date
	}
	return m
}

func toRecord(m AppointmentModel) domain.AppointmentRecord {
	rec := domain.AppointmentRecord{
		ID:         m.ID,
		InsuredID:  m.InsuredID,
		ScheduleID: m.ScheduleID,
		CountryISO: m.CountryISO,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.CenterID != nil && m.SpecialtyID != nil && m.MedicID != nil && m.AppointmentDate != nil {
		rec.ScheduleDetails = &domain.ScheduleDetails{
			ScheduleID:  m.ScheduleID,
			CenterID:    *m.CenterID,
			SpecialtyID: *m.SpecialtyID,
			MedicID:     *m.MedicID,
			Date:        *m.AppointmentDate,
		}
	}
	return rec
}
