package events

import "time"

const (
	RKAppointmentCreated   = "appointment.created"
	RKAppointmentProcessed = "appointment.processed"

	EventTypeProcessed = "AppointmentProcessed"
	EventSource        = "appointment.service"
)

// AppointmentCreated is the fan-out payload this shard consumes.
type AppointmentCreated struct {
	ID         string    `json:"id"`
	InsuredID  string    `json:"insuredId"`
	ScheduleID int       `json:"scheduleId"`
	CountryISO string    `json:"countryISO"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ScheduleDetailsPayload struct {
	ScheduleID  int       `json:"scheduleId"`
	CenterID    int       `json:"centerId"`
	SpecialtyID int       `json:"specialtyId"`
	MedicID     int       `json:"medicId"`
	Date        time.Time `json:"date"`
}

// CompletionDetail is the inner payload of the emitted completion event.
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

// CompletionEnvelope is the structured event-bus shape wrapping the detail.
type CompletionEnvelope struct {
	Version    string           `json:"version"`
	ID         string           `json:"id"`
	DetailType string           `json:"detail-type"`
	Source     string           `json:"source"`
	Time       time.Time        `json:"time"`
	Resources  []string         `json:"resources,omitempty"`
	Detail     CompletionDetail `json:"detail"`
}
