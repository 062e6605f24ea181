package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Appointment holds the process configuration for appointment-service.
// Loaded once at startup and passed into constructors; business logic never
// reads the environment directly.
type Appointment struct {
	// DB
	PGAppointmentsDSN string `envconfig:"PG_APPOINTMENTS_DSN" required:"true"`
	// Network
	HTTPAddr string `envconfig:"APPOINTMENT_HTTP_ADDR" default:":8080"`

	// RabbitMQ for fanning out created appointments
	RabbitURL           string `envconfig:"RABBIT_URL" required:"true"`
	AppointmentExchange string `envconfig:"APPOINTMENT_EXCHANGE" default:"appointments.exchange"`

	// RabbitMQ for consuming completion events
	CompletionExchange string `envconfig:"COMPLETION_EXCHANGE" default:"appointments.completion.exchange"`
	CompletionQueue    string `envconfig:"COMPLETION_QUEUE" default:"appointments.completion.q"`
	CompletionDLX      string `envconfig:"COMPLETION_DLX" default:"appointments.completion.dlx"`
	CompletionDLQ      string `envconfig:"COMPLETION_DLQ" default:"appointments.completion.q.dlq"`
	CompletionPrefetch int    `envconfig:"COMPLETION_PREFETCH" default:"8"`

	// Redis cache for the list endpoint; empty addr disables caching
	RedisAddr    string        `envconfig:"REDIS_ADDR" default:""`
	ListCacheTTL time.Duration `envconfig:"LIST_CACHE_TTL" default:"30s"`
}

func LoadAppointment() (Appointment, error) {
	var c Appointment
	err := envconfig.Process("", &c)
	return c, err
}

// Country holds the process configuration for one country-service shard.
// Each deployment owns exactly one country and its own MySQL pool.
type Country struct {
	CountryISO string `envconfig:"COUNTRY" required:"true"`
	MySQLDSN   string `envconfig:"RDS_DSN" required:"true"`

	RabbitURL           string `envconfig:"RABBIT_URL" required:"true"`
	AppointmentExchange string `envconfig:"APPOINTMENT_EXCHANGE" default:"appointments.exchange"`
	CompletionExchange  string `envconfig:"COMPLETION_EXCHANGE" default:"appointments.completion.exchange"`

	Queue    string `envconfig:"COUNTRY_QUEUE"`
	DLX      string `envconfig:"COUNTRY_DLX" default:"appointments.country.dlx"`
	DLQ      string `envconfig:"COUNTRY_DLQ"`
	Prefetch int    `envconfig:"COUNTRY_PREFETCH" default:"8"`

	// Confirmation delay before the completion event is published.
	// Overridable so tests run near-instantaneously.
	ProcessingDelay time.Duration `envconfig:"PROCESSING_DELAY" default:"8s"`
}

func LoadCountry() (Country, error) {
	var c Country
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if c.CountryISO != "PE" && c.CountryISO != "CL" {
		return c, fmt.Errorf("invalid COUNTRY %q: must be \"PE\" or \"CL\"", c.CountryISO)
	}
	if c.Queue == "" {
		c.Queue = fmt.Sprintf("appointments.%s.q", c.CountryISO)
	}
	if c.DLQ == "" {
		c.DLQ = c.Queue + ".dlq"
	}
	return c, nil
}
