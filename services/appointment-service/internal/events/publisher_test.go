package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
)

type capturingPublisher struct {
	key     string
	headers amqp.Table
	body    []byte
	err     error
}

func (c *capturingPublisher) PublishJSON(_ context.Context, key string, v any, headers amqp.Table) error {
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.key = key
	c.headers = headers
	c.body = b
	return nil
}

func TestPublishCreatedRoutesByCountry(t *testing.T) {
	cap := &capturingPublisher{}
	pub := NewFanoutPublisher(cap)

	a := domain.New("a1", "00123", 100, domain.CountryPE)
	require.NoError(t, pub.PublishCreated(context.Background(), a))

	assert.Equal(t, "appointment.created.PE", cap.key)
	assert.Equal(t, "PE", cap.headers["countryISO"])
	assert.Equal(t, "a1", cap.headers["appointmentId"])

	var msg AppointmentCreated
	require.NoError(t, json.Unmarshal(cap.body, &msg))
	assert.Equal(t, "a1", msg.ID)
	assert.Equal(t, "00123", msg.InsuredID)
	assert.Equal(t, 100, msg.ScheduleID)
	assert.Equal(t, "pending", msg.Status)
	assert.True(t, msg.CreatedAt.Equal(msg.UpdatedAt))
}

func TestPublishCreatedWrapsChannelFailure(t *testing.T) {
	cap := &capturingPublisher{err: errors.New("broker down")}
	pub := NewFanoutPublisher(cap)

	err := pub.PublishCreated(context.Background(), domain.New("a1", "00123", 100, domain.CountryCL))
	require.ErrorIs(t, err, ErrPublishUnavailable)
}
