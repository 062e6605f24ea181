package events

import (
	"time"
)

const (
	// fan-out routing keys carry the country so each shard binds only to
	// its own queue, e.g. appointment.created.PE
	RKAppointmentCreated   = "appointment.created"
	RKAppointmentProcessed = "appointment.processed"

	EventTypeProcessed = "AppointmentProcessed"
)

// AppointmentCreated is the fan-out payload: the flat projection of a newly
// created appointment.
type AppointmentCreated struct {
	ID         string    `json:"id"`
	InsuredID  string    `json:"insuredId"`
	ScheduleID int       `json:"scheduleId"`
	CountryISO string    `json:"countryISO"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ScheduleDetailsPayload mirrors domain.ScheduleDetails on the wire.
type ScheduleDetailsPayload struct {
	ScheduleID  int       `json:"scheduleId"`
	CenterID    int       `json:"centerId"`
	SpecialtyID int       `json:"specialtyId"`
	MedicID     int       `json:"medicId"`
	Date        time.Time `json:"date"`
}

// CompletionDetail is the inner payload of a completion event.
type CompletionDetail struct {
	ID              string                  `json:"id"`
	InsuredID       string                  `json:"insuredId"`
	ScheduleID      int                     `json:"scheduleId"`
	CountryISO      string                  `json:"countryISO"`
	Status          string                  `json:"status"`
	ScheduleDetails *ScheduleDetailsPayload `json:"scheduleDetails,omitempty"`
	UpdatedAt       time.Time               `json:"updatedAt"`
	ProcessedAt     time.Time               `json:"processedAt"`
}

// CompletionEnvelope is the structured shape a completion event arrives in
// when it comes through the event bus. Consumers must also tolerate a bare
// CompletionDetail body.
type CompletionEnvelope struct {
	Version    string           `json:"version"`
	ID         string           `json:"id"`
	DetailType string           `json:"detail-type"`
	Source     string           `json:"source"`
	Time       time.Time        `json:"time"`
	Resources  []string         `json:"resources,omitempty"`
	Detail     CompletionDetail `json:"detail"`
}
