package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/service"
)

type memStore struct {
	byID map[string]*domain.Appointment
}

func (m *memStore) Save(_ context.Context, a *domain.Appointment) error {
	m.byID[a.ID()] = a
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	return m.byID[id], nil
}

func (m *memStore) FindByInsuredID(_ context.Context, insuredID string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range m.byID {
		if a.InsuredID() == insuredID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, a *domain.Appointment) error {
	m.byID[a.ID()] = a
	return nil
}

type noopPublisher struct{ calls int }

func (p *noopPublisher) PublishCreated(context.Context, *domain.Appointment) error {
	p.calls++
	return nil
}

func setupRouter() (*gin.Engine, *memStore, *noopPublisher) {
	gin.SetMode(gin.TestMode)
	store := &memStore{byID: map[string]*domain.Appointment{}}
	pub := &noopPublisher{}
	svc := service.NewAppointmentSvc(store, pub, nil, 0)
	r := gin.New()
	Register(r, NewAppointmentHandler(svc))
	return r, store, pub
}

func TestCreateAppointment(t *testing.T) {
	r, store, pub := setupRouter()

	body := `{"insuredId":"00123","scheduleId":100,"countryISO":"PE"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Appointment in process", resp.Message)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.NotEmpty(t, resp.Data.ID)
	assert.Len(t, store.byID, 1)
	assert.Equal(t, 1, pub.calls)
}

func TestCreateAppointmentValidation(t *testing.T) {
	r, _, _ := setupRouter()

	cases := []struct {
		name string
		body string
	}{
		{"insuredId too short", `{"insuredId":"123","scheduleId":100,"countryISO":"PE"}`},
		{"insuredId not numeric", `{"insuredId":"12a45","scheduleId":100,"countryISO":"PE"}`},
		{"scheduleId missing", `{"insuredId":"00123","countryISO":"PE"}`},
		{"scheduleId negative", `{"insuredId":"00123","scheduleId":-1,"countryISO":"PE"}`},
		{"unknown country", `{"insuredId":"00123","scheduleId":100,"countryISO":"BR"}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListAppointments(t *testing.T) {
	r, _, _ := setupRouter()

	for _, body := range []string{
		`{"insuredId":"00123","scheduleId":100,"countryISO":"PE"}`,
		`{"insuredId":"00123","scheduleId":200,"countryISO":"CL"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/appointments/00123", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		InsuredID    string            `json:"insuredId"`
		Total        int               `json:"total"`
		Appointments []json.RawMessage `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "00123", resp.InsuredID)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Appointments, 2)
}
