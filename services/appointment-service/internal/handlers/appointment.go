package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/domain"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentSvc
}

func NewAppointmentHandler(svc *service.AppointmentSvc) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func Register(r *gin.Engine, h *AppointmentHandler) {
	v1 := r.Group("/v1")
	{
		v1.POST("/appointments", h.Create)
		v1.GET("/appointments/:insuredId", h.List)
	}
}

type appointmentResponse struct {
	ID              string           `json:"id"`
	InsuredID       string           `json:"insuredId"`
	ScheduleID      int              `json:"scheduleId"`
	CountryISO      string           `json:"countryISO"`
	Status          string           `json:"status"`
	ScheduleDetails *scheduleDetails `json:"scheduleDetails,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type scheduleDetails struct {
	ScheduleID  int       `json:"scheduleId"`
	CenterID    int       `json:"centerId"`
	SpecialtyID int       `json:"specialtyId"`
	MedicID     int       `json:"medicId"`
	Date        time.Time `json:"date"`
}

func toResponse(a *domain.Appointment) appointmentResponse {
	s := a.Snapshot()
	out := appointmentResponse{
		ID:         s.ID,
		InsuredID:  s.InsuredID,
		ScheduleID: s.ScheduleID,
		CountryISO: string(s.CountryISO),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if d := s.ScheduleDetails; d != nil {
		out.ScheduleDetails = &scheduleDetails{
			ScheduleID:  d.ScheduleID,
			CenterID:    d.CenterID,
			SpecialtyID: d.SpecialtyID,
			MedicID:     d.MedicID,
			Date:        d.Date,
		}
	}
	return out
}

// POST /v1/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	var in struct {
		InsuredID  string `json:"insuredId" binding:"required,len=5,numeric"`
		ScheduleID int    `json:"scheduleId" binding:"required,gt=0"`
		CountryISO string `json:"countryISO" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insuredId must be exactly 5 digits, scheduleId must be a positive integer"})
		return
	}
	country := domain.CountryISO(in.CountryISO)
	if !country.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": `countryISO must be either "PE" or "CL"`})
		return
	}

	a := h.svc.Create(c.Request.Context(), in.InsuredID, in.ScheduleID, country)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Appointment in process",
		"data":    toResponse(a),
	})
}

// GET /v1/appointments/:insuredId
func (h *AppointmentHandler) List(c *gin.Context) {
	insuredID := c.Param("insuredId")
	if insuredID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insuredId is required"})
		return
	}

	appts, err := h.svc.ListByInsured(c.Request.Context(), insuredID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list appointments"})
		return
	}

	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{
		"insuredId":    insuredID,
		"total":        len(out),
		"appointments": out,
	})
}
