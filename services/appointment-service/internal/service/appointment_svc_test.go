package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
)

type fakeStore struct {
	byID    map[string]*domain.Appointment
	saveErr error
	findErr error
	saves   int
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*domain.Appointment{}}
}

func (f *fakeStore) Save(_ context.Context, a *domain.Appointment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.byID[a.ID()] = domain.Reconstitute(a.Snapshot())
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byID[id], nil
}

func (f *fakeStore) FindByInsuredID(_ context.Context, insuredID string) ([]*domain.Appointment, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*domain.Appointment
	for _, a := range f.byID {
		if a.InsuredID() == insuredID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, a *domain.Appointment) error {
	f.updates++
	f.byID[a.ID()] = domain.Reconstitute(a.Snapshot())
	return nil
}

type fakePublisher struct {
	published []*domain.Appointment
	err       error
}

func (f *fakePublisher) PublishCreated(_ context.Context, a *domain.Appointment) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, a)
	return nil
}

func TestCreateReturnsPendingAndPublishesOnce(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewAppointmentSvc(store, pub, nil, 0)

	a := svc.Create(context.Background(), "00123", 100, domain.CountryPE)

	assert.Equal(t, domain.StatusPending, a.Status())
	assert.True(t, a.CreatedAt().Equal(a.UpdatedAt()))
	assert.NotEmpty(t, a.ID())
	assert.Equal(t, 1, store.saves)
	require.Len(t, pub.published, 1)
	assert.Equal(t, a.ID(), pub.published[0].ID())
}

func TestCreateSwallowsStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("store down")
	pub := &fakePublisher{}
	svc := NewAppointmentSvc(store, pub, nil, 0)

	a := svc.Create(context.Background(), "00123", 100, domain.CountryCL)

	require.NotNil(t, a)
	assert.Equal(t, domain.StatusPending, a.Status())
	// fan-out still attempted
	assert.Len(t, pub.published, 1)
}

func TestCreateSwallowsPublishFailure(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewAppointmentSvc(store, pub, nil, 0)

	a := svc.Create(context.Background(), "00123", 100, domain.CountryPE)

	require.NotNil(t, a)
	assert.Equal(t, 1, store.saves)
}

func TestListByInsuredNewestFirst(t *testing.T) {
	store := newFakeStore()
	old := domain.Reconstitute(domain.Snapshot{
		ID: "a1", InsuredID: "00123", ScheduleID: 100, CountryISO: domain.CountryPE,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	})
	recent := domain.Reconstitute(domain.Snapshot{
		ID: "a2", InsuredID: "00123", ScheduleID: 200, CountryISO: domain.CountryPE,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	other := domain.Reconstitute(domain.Snapshot{
		ID: "b1", InsuredID: "99999", ScheduleID: 300, CountryISO: domain.CountryCL,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	store.byID["a1"] = old
	store.byID["a2"] = recent
	store.byID["b1"] = other

	svc := NewAppointmentSvc(store, &fakePublisher{}, nil, 0)
	got, err := svc.ListByInsured(context.Background(), "00123")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID())
	assert.Equal(t, "a1", got[1].ID())
}

func TestListByInsuredPropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("store down")
	svc := NewAppointmentSvc(store, &fakePublisher{}, nil, 0)

	_, err := svc.ListByInsured(context.Background(), "00123")
	require.Error(t, err)
}
