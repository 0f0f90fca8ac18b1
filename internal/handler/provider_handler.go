package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

type providerService interface {
	Create(ctx context.Context, req dto.CreateProviderRequest, actor *models.JWTClaims) (*models.ServiceProvider, error)
	Get(ctx context.Context, id string) (*models.ServiceProvider, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.ProviderListQuery) ([]models.ServiceProvider, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateProviderRequest, actor *models.JWTClaims) (*models.ServiceProvider, error)
	Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error
}

// ProviderHandler exposes salon provider endpoints.
type ProviderHandler struct {
	service providerService
}

// NewProviderHandler builds a new handler.
func NewProviderHandler(service providerService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// Create godoc
// @Summary Create provider
// @Description Registers a provider from an approved inquiry
// @Tags Providers
// @Accept json
// @Produce json
// @Param payload body dto.CreateProviderRequest true "Provider payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /provider [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateProviderRequest
	if !bindJSON(c, &req, "invalid provider payload") {
		return
	}
	provider, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, provider)
}

// List godoc
// @Summary List providers
// @Tags Providers
// @Produce json
// @Param status query string false "active or inactive"
// @Success 200 {object} response.Envelope
// @Router /providers/profile [get]
func (h *ProviderHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.ProviderListQuery
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

// Get godoc
// @Summary Get provider
// @Tags Providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /providers/profile/{id} [get]
func (h *ProviderHandler) Get(c *gin.Context) {
	provider, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, provider, nil)
}

// Update godoc
// @Summary Update provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID"
// @Param payload body dto.UpdateProviderRequest true "Provider fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /provider/{id}/edit [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpdateProviderRequest
	if !bindJSON(c, &req, "invalid provider payload") {
		return
	}
	provider, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, provider, nil)
}

// Deactivate godoc
// @Summary Deactivate provider
// @Tags Providers
// @Param id path string true "Provider ID"
// @Success 204 {object} response.Envelope
// @Router /provider/{id}/deactivate [put]
func (h *ProviderHandler) Deactivate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
