package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsPending(t *testing.T) {
	a := New("a1", "00123", 100, CountryPE)

	assert.Equal(t, StatusPending, a.Status())
	assert.Equal(t, "00123", a.InsuredID())
	assert.Equal(t, 100, a.ScheduleID())
	assert.Equal(t, CountryPE, a.CountryISO())
	assert.True(t, a.CreatedAt().Equal(a.UpdatedAt()))
	assert.Nil(t, a.ScheduleDetails())
}

func TestCompleteOnlyFromPending(t *testing.T) {
	a := New("a1", "00123", 100, CountryPE)
	created := a.CreatedAt()

	require.NoError(t, a.Complete())
	assert.Equal(t, StatusCompleted, a.Status())
	assert.True(t, a.UpdatedAt().After(created) || a.UpdatedAt().Equal(created))

	err := a.Complete()
	require.ErrorIs(t, err, ErrInvalidTransition)

	failed := New("a2", "00123", 100, CountryPE)
	require.NoError(t, failed.Fail())
	require.ErrorIs(t, failed.Complete(), ErrInvalidTransition)
}

func TestFailRejectedOnceCompleted(t *testing.T) {
	a := New("a1", "00123", 100, CountryCL)
	require.NoError(t, a.Complete())

	err := a.Fail()
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, a.Status())
}

func TestFailFromPendingAndFailed(t *testing.T) {
	a := New("a1", "00123", 100, CountryCL)
	require.NoError(t, a.Fail())
	assert.Equal(t, StatusFailed, a.Status())

	// failing again is a no-op and must not advance updatedAt
	updated := a.UpdatedAt()
	require.NoError(t, a.Fail())
	assert.True(t, a.UpdatedAt().Equal(updated))
}

func TestTransitionToSameStatusIsNoop(t *testing.T) {
	a := New("a1", "00123", 100, CountryPE)
	updated := a.UpdatedAt()

	require.NoError(t, a.TransitionTo(StatusPending))
	assert.Equal(t, StatusPending, a.Status())
	assert.True(t, a.UpdatedAt().Equal(updated))

	require.NoError(t, a.Complete())
	updated = a.UpdatedAt()
	require.NoError(t, a.TransitionTo(StatusCompleted))
	assert.True(t, a.UpdatedAt().Equal(updated))
}

func TestTransitionToRejectsBadEdges(t *testing.T) {
	a := New("a1", "00123", 100, CountryPE)
	require.NoError(t, a.Complete())

	require.ErrorIs(t, a.TransitionTo(StatusFailed), ErrInvalidTransition)
	require.ErrorIs(t, a.TransitionTo(StatusPending), ErrInvalidTransition)
	require.ErrorIs(t, a.TransitionTo(Status("unknown")), ErrInvalidTransition)
}

func TestReconstituteTrustsPersistedState(t *testing.T) {
	a := New("a1", "00123", 100, CountryPE)
	require.NoError(t, a.Complete())

	b := Reconstitute(a.Snapshot())
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	// terminal state still enforced after rehydration
	require.ErrorIs(t, b.Fail(), ErrInvalidTransition)
}
