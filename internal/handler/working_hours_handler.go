package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
)

type workingHoursService interface {
	Register(ctx context.Context, req dto.RegisterWorkingHoursRequest) ([]models.WorkingHours, error)
	List(ctx context.Context, query dto.WorkingHoursQuery) ([]models.WorkingHours, error)
	Update(ctx context.Context, id string, req dto.UpdateWorkingHoursRequest) (*models.WorkingHours, error)
	Deactivate(ctx context.Context, id string) error
}

// WorkingHoursHandler exposes staff working hours.
type WorkingHoursHandler struct {
	service workingHoursService
}

// NewWorkingHoursHandler builds a new handler.
func NewWorkingHoursHandler(service workingHoursService) *WorkingHoursHandler {
	return &WorkingHoursHandler{service: service}
}

// Register godoc
// @Summary Register working hours
// @Description Creates the weekly intervals of several employees in one transaction
// @Tags Working Hours
// @Accept json
// @Produce json
// @Param payload body dto.RegisterWorkingHoursRequest true "Working hours batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /working_hours/register [post]
func (h *WorkingHoursHandler) Register(c *gin.Context) {
	var req dto.RegisterWorkingHoursRequest
	if !bindJSON(c, &req, "invalid working hours payload") {
		return
	}
	items, err := h.service.Register(c.Request.Context(), req)
	respondCreated(c, items, err)
}

// List godoc
// @Summary List working hours
// @Tags Working Hours
// @Produce json
// @Param provider_id query string false "Provider ID"
// @Param employee_id query string false "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /working_hours/profile [get]
func (h *WorkingHoursHandler) List(c *gin.Context) {
	var query dto.WorkingHoursQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.List(c.Request.Context(), query)
	respondOK(c, items, err)
}

// Update godoc
// @Summary Update working hours entry
// @Tags Working Hours
// @Accept json
// @Produce json
// @Param id path string true "Working hours ID"
// @Param payload body dto.UpdateWorkingHoursRequest true "Interval"
// @Success 200 {object} response.Envelope
// @Router /working_hours/{id}/edit [put]
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	var req dto.UpdateWorkingHoursRequest
	if !bindJSON(c, &req, "invalid working hours payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	respondOK(c, item, err)
}

// Deactivate godoc
// @Summary Deactivate working hours entry
// @Tags Working Hours
// @Param id path string true "Working hours ID"
// @Success 204 {object} response.Envelope
// @Router /working_hours/{id}/deactivate [put]
func (h *WorkingHoursHandler) Deactivate(c *gin.Context) {
	respondNoContent(c, h.service.Deactivate(c.Request.Context(), c.Param("id")))
}
