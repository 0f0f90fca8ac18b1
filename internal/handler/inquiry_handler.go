package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

type inquiryService interface {
	RegisterInquiry(ctx context.Context, req dto.RegisterInquiryRequest) (*models.Inquiry, error)
	List(ctx context.Context, status string, page, pageSize int) ([]models.Inquiry, *models.Pagination, error)
	Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error)
	Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error)
	NoShow(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error)
}

// InquiryHandler serves the public inquiry form and the approver queue.
type InquiryHandler struct {
	service inquiryService
}

// NewInquiryHandler builds a new handler.
func NewInquiryHandler(service inquiryService) *InquiryHandler {
	return &InquiryHandler{service: service}
}

// Register godoc
// @Summary Submit inquiry
// @Description Salon application to join the platform
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body dto.RegisterInquiryRequest true "Inquiry payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /inquiries [post]
func (h *InquiryHandler) Register(c *gin.Context) {
	var req dto.RegisterInquiryRequest
	if !bindJSON(c, &req, "invalid inquiry payload") {
		return
	}
	inquiry, err := h.service.RegisterInquiry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inquiry)
}

// List godoc
// @Summary List inquiries
// @Tags Inquiries
// @Produce json
// @Param status path string false "PENDING, APPROVED, REJECTED or NO_SHOW"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /approver/inquiries/{status} [get]
func (h *InquiryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, pagination, err := h.service.List(c.Request.Context(), c.Param("status"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Approve godoc
// @Summary Approve inquiry
// @Tags Inquiries
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /approver/inquiries/{id}/approval [put]
func (h *InquiryHandler) Approve(c *gin.Context) { h.transition(c, h.service.Approve) }

// Reject godoc
// @Summary Reject inquiry
// @Tags Inquiries
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Router /approver/inquiries/{id}/rejection [put]
func (h *InquiryHandler) Reject(c *gin.Context) { h.transition(c, h.service.Reject) }

// NoShow godoc
// @Summary Mark inquiry as no-show
// @Tags Inquiries
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Router /approver/inquiries/{id}/no-show [put]
func (h *InquiryHandler) NoShow(c *gin.Context) { h.transition(c, h.service.NoShow) }

func (h *InquiryHandler) transition(c *gin.Context, fn func(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error)) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	inquiry, err := fn(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}
