package domain

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type CountryISO string

const (
	CountryPE CountryISO = "PE"
	CountryCL CountryISO = "CL"
)

func (c CountryISO) Valid() bool {
	return c == CountryPE || c == CountryCL
}

// ErrInvalidTransition signals state-machine misuse. It is never swallowed:
// a rejected transition means a logic bug upstream, not a transient fault.
var ErrInvalidTransition = errors.New("invalid_status_transition")

// ScheduleDetails is populated only by the country-specific pipeline.
// When present, it is fully populated; there are no partial detail sets.
type ScheduleDetails struct {
	ScheduleID  int
	CenterID    int
	SpecialtyID int
	MedicID     int
	Date        time.Time
}

// Appointment is the central entity. Fields are unexported so status can
// only change through the state machine below.
type Appointment struct {
	id              string
	insuredID       string
	scheduleID      int
	countryISO      CountryISO
	status          Status
	scheduleDetails *ScheduleDetails
	createdAt       time.Time
	updatedAt       time.Time
}

// New returns a PENDING appointment with createdAt == updatedAt.
func New(id, insuredID string, scheduleID int, countryISO CountryISO) *Appointment {
	now := time.Now().UTC()
	return &Appointment{
		id:         id,
		insuredID:  insuredID,
		scheduleID: scheduleID,
		countryISO: countryISO,
		status:     StatusPending,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Snapshot is the exported projection used for persistence and messaging.
type Snapshot struct {
	ID              string
	InsuredID       string
	ScheduleID      int
	CountryISO      CountryISO
	Status          Status
	ScheduleDetails *ScheduleDetails
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reconstitute rehydrates a persisted appointment. It trusts the stored
// state and does not re-derive invariants.
func Reconstitute(s Snapshot) *Appointment {
	return &Appointment{
		id:              s.ID,
		insuredID:       s.InsuredID,
		scheduleID:      s.ScheduleID,
		countryISO:      s.CountryISO,
		status:          s.Status,
		scheduleDetails: s.ScheduleDetails,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

func (a *Appointment) Snapshot() Snapshot {
	return Snapshot{
		ID:              a.id,
		InsuredID:       a.insuredID,
		ScheduleID:      a.scheduleID,
		CountryISO:      a.countryISO,
		Status:          a.status,
		ScheduleDetails: a.scheduleDetails,
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
	}
}

func (a *Appointment) ID() string                        { return a.id }
func (a *Appointment) InsuredID() string                 { return a.insuredID }
func (a *Appointment) ScheduleID() int                   { return a.scheduleID }
func (a *Appointment) CountryISO() CountryISO            { return a.countryISO }
func (a *Appointment) Status() Status                    { return a.status }
func (a *Appointment) ScheduleDetails() *ScheduleDetails { return a.scheduleDetails }
func (a *Appointment) CreatedAt() time.Time              { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time              { return a.updatedAt }

func (a *Appointment) setStatus(s Status) {
	a.status = s
	a.updatedAt = time.Now().UTC()
}

// Complete moves PENDING -> COMPLETED. Any other starting status is a
// rejected transition, including an appointment that already completed.
func (a *Appointment) Complete() error {
	if a.status != StatusPending {
		return fmt.Errorf("%w: cannot complete appointment in status %q", ErrInvalidTransition, a.status)
	}
	a.setStatus(StatusCompleted)
	return nil
}

// Fail moves to FAILED from PENDING. Failing a COMPLETED appointment is
// rejected; failing an already-FAILED one is a no-op.
func (a *Appointment) Fail() error {
	if a.status == StatusCompleted {
		return fmt.Errorf("%w: cannot fail a completed appointment", ErrInvalidTransition)
	}
	if a.status == StatusFailed {
		return nil
	}
	a.setStatus(StatusFailed)
	return nil
}

// TransitionTo applies the state machine. A transition to the current status
// is a no-op: no error, and updatedAt does not advance, so callers skip the
// write.
func (a *Appointment) TransitionTo(to Status) error {
	if to == a.status {
		return nil
	}
	switch to {
	case StatusCompleted:
		return a.Complete()
	case StatusFailed:
		return a.Fail()
	default:
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, a.status, to)
	}
}
