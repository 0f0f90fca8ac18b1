package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/export"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

type appointmentService interface {
	AvailableSlots(ctx context.Context, staffID, serviceID, date string) (*dto.AvailableSlotsResponse, error)
	CreateAppointment(ctx context.Context, req dto.CreateAppointmentRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error)
	EditAppointment(ctx context.Context, id string, req dto.EditAppointmentRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error)
	DeleteAppointment(ctx context.Context, id string, actor *models.JWTClaims) error
	Confirm(ctx context.Context, id string, actor *models.JWTClaims) error
	Reject(ctx context.Context, id string, actor *models.JWTClaims) error
	Cancel(ctx context.Context, id string, actor *models.JWTClaims) error
	NoShow(ctx context.Context, id string, actor *models.JWTClaims) error
	Complete(ctx context.Context, id string, actor *models.JWTClaims) error
	List(ctx context.Context, actor *models.JWTClaims, query dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error)
	ExportAgenda(ctx context.Context, actor *models.JWTClaims, query dto.AgendaQuery) ([]byte, export.Exporter, error)
}

// AppointmentHandler exposes availability, booking and the staff lifecycle.
type AppointmentHandler struct {
	service appointmentService
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(service appointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// AvailableSlots godoc
// @Summary Available slots
// @Description Free windows of the service duration for a staff member on one day
// @Tags Appointments
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Param service_id path string true "Service ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /appointments/available_slots/{staff_id}/{service_id}/{date} [get]
func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	slots, err := h.service.AvailableSlots(c.Request.Context(), c.Param("staff_id"), c.Param("service_id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Book appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateAppointmentRequest
	if !bindJSON(c, &req, "invalid appointment payload") {
		return
	}
	appt, err := h.service.CreateAppointment(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appt)
}

// Info godoc
// @Summary List appointments
// @Description Clients see their bookings, staff their assignments
// @Tags Appointments
// @Produce json
// @Param status query string false "Status filter"
// @Param date query string false "Day filter (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments/info [get]
func (h *AppointmentHandler) Info(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.AppointmentListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Edit godoc
// @Summary Reschedule appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.EditAppointmentRequest true "New time and optional service"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/edit [put]
func (h *AppointmentHandler) Edit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.EditAppointmentRequest
	if !bindJSON(c, &req, "invalid appointment payload") {
		return
	}
	appt, err := h.service.EditAppointment(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Delete godoc
// @Summary Cancel own appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.DeleteAppointment(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Confirm godoc
// @Summary Confirm appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/confirm [put]
func (h *AppointmentHandler) Confirm(c *gin.Context) { h.transition(c, h.service.Confirm, "confirmed") }

// Reject godoc
// @Summary Reject appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/reject [put]
func (h *AppointmentHandler) Reject(c *gin.Context) { h.transition(c, h.service.Reject, "rejected") }

// Cancel godoc
// @Summary Cancel appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/cancel [put]
func (h *AppointmentHandler) Cancel(c *gin.Context) { h.transition(c, h.service.Cancel, "cancelled") }

// NoShow godoc
// @Summary Mark appointment as no-show
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/no_show [put]
func (h *AppointmentHandler) NoShow(c *gin.Context) { h.transition(c, h.service.NoShow, "marked as no-show") }

// Complete godoc
// @Summary Complete appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/complete [put]
func (h *AppointmentHandler) Complete(c *gin.Context) { h.transition(c, h.service.Complete, "completed") }

// Agenda godoc
// @Summary Export daily agenda
// @Tags Appointments
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /appointments/agenda [get]
func (h *AppointmentHandler) Agenda(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.AgendaQuery
	if !bindQuery(c, &query) {
		return
	}
	data, exporter, err := h.service.ExportAgenda(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("agenda-%s.%s", query.Date, exporter.Extension())
	response.Attachment(c, filename, exporter.ContentType(), data)
}

type transitionFunc func(ctx context.Context, id string, actor *models.JWTClaims) error

func (h *AppointmentHandler) transition(c *gin.Context, fn transitionFunc, verb string) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := fn(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Appointment " + verb + " successfully"}, nil)
}
