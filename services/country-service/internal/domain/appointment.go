package domain

import "time"

// AppointmentRecord is the shard-side view of an appointment. The shard
// never transitions the record's status; it persists what it received,
// enriches it with schedule details when the country rules provide them,
// and reports completion back to the saga.
type AppointmentRecord struct {
	ID              string
	InsuredID       string
	ScheduleID      int
	CountryISO      string
	Status          string
	ScheduleDetails *ScheduleDetails
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ScheduleDetails struct {
	ScheduleID  int
	CenterID    int
	SpecialtyID int
	MedicID     int
	Date        time.Time
}
