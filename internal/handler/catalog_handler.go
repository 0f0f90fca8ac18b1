package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

type catalogService interface {
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, query dto.CatalogListQuery) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id string, req dto.CategoryRequest) (*models.Category, error)
	DeactivateCategory(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, req dto.SubcategoryRequest) (*models.Subcategory, error)
	GetSubcategory(ctx context.Context, id string) (*models.Subcategory, error)
	ListSubcategories(ctx context.Context, query dto.CatalogListQuery) ([]models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id string, req dto.UpdateSubcategoryRequest) (*models.Subcategory, error)
	DeactivateSubcategory(ctx context.Context, id string) error

	CreateService(ctx context.Context, req dto.ServiceRequest) (*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, query dto.CatalogListQuery) ([]models.Service, error)
	UpdateService(ctx context.Context, id string, req dto.UpdateServiceRequest) (*models.Service, error)
	DeactivateService(ctx context.Context, id string) error
}

// CatalogHandler exposes categories, subcategories and services.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CreateCategory godoc
// @Summary Create category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CategoryRequest true "Category"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}
	item, err := h.service.CreateCategory(c.Request.Context(), req)
	respondCreated(c, item, err)
}

// ListCategories godoc
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Param status query string false "active or inactive"
// @Success 200 {object} response.Envelope
// @Router /categories/profile [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var query dto.CatalogListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.ListCategories(c.Request.Context(), query)
	respondOK(c, items, err)
}

// GetCategory godoc
// @Summary Get category
// @Tags Catalog
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /categories/profile/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	item, err := h.service.GetCategory(c.Request.Context(), c.Param("id"))
	respondOK(c, item, err)
}

// UpdateCategory godoc
// @Summary Rename category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body dto.CategoryRequest true "Category"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/edit [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}
	item, err := h.service.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	respondOK(c, item, err)
}

// DeactivateCategory godoc
// @Summary Deactivate category
// @Tags Catalog
// @Param id path string true "Category ID"
// @Success 204 {object} response.Envelope
// @Router /categories/{id}/deactivate [put]
func (h *CatalogHandler) DeactivateCategory(c *gin.Context) {
	respondNoContent(c, h.service.DeactivateCategory(c.Request.Context(), c.Param("id")))
}

// CreateSubcategory godoc
// @Summary Create subcategory
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.SubcategoryRequest true "Subcategory"
// @Success 201 {object} response.Envelope
// @Router /subcategories [post]
func (h *CatalogHandler) CreateSubcategory(c *gin.Context) {
	var req dto.SubcategoryRequest
	if !bindJSON(c, &req, "invalid subcategory payload") {
		return
	}
	item, err := h.service.CreateSubcategory(c.Request.Context(), req)
	respondCreated(c, item, err)
}

// ListSubcategories godoc
// @Summary List subcategories
// @Tags Catalog
// @Produce json
// @Param status query string false "active or inactive"
// @Param category_id query string false "Category ID"
// @Success 200 {object} response.Envelope
// @Router /subcategories/profile [get]
func (h *CatalogHandler) ListSubcategories(c *gin.Context) {
	var query dto.CatalogListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.ListSubcategories(c.Request.Context(), query)
	respondOK(c, items, err)
}

// GetSubcategory godoc
// @Summary Get subcategory
// @Tags Catalog
// @Produce json
// @Param id path string true "Subcategory ID"
// @Success 200 {object} response.Envelope
// @Router /subcategories/profile/{id} [get]
func (h *CatalogHandler) GetSubcategory(c *gin.Context) {
	item, err := h.service.GetSubcategory(c.Request.Context(), c.Param("id"))
	respondOK(c, item, err)
}

// UpdateSubcategory godoc
// @Summary Update subcategory
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Subcategory ID"
// @Param payload body dto.UpdateSubcategoryRequest true "Subcategory fields"
// @Success 200 {object} response.Envelope
// @Router /subcategories/{id}/edit [put]
func (h *CatalogHandler) UpdateSubcategory(c *gin.Context) {
	var req dto.UpdateSubcategoryRequest
	if !bindJSON(c, &req, "invalid subcategory payload") {
		return
	}
	item, err := h.service.UpdateSubcategory(c.Request.Context(), c.Param("id"), req)
	respondOK(c, item, err)
}

// DeactivateSubcategory godoc
// @Summary Deactivate subcategory
// @Tags Catalog
// @Param id path string true "Subcategory ID"
// @Success 204 {object} response.Envelope
// @Router /subcategories/{id}/deactivate [put]
func (h *CatalogHandler) DeactivateSubcategory(c *gin.Context) {
	respondNoContent(c, h.service.DeactivateSubcategory(c.Request.Context(), c.Param("id")))
}

// CreateService godoc
// @Summary Create service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.ServiceRequest true "Service"
// @Success 201 {object} response.Envelope
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req dto.ServiceRequest
	if !bindJSON(c, &req, "invalid service payload") {
		return
	}
	item, err := h.service.CreateService(c.Request.Context(), req)
	respondCreated(c, item, err)
}

// ListServices godoc
// @Summary List services
// @Tags Catalog
// @Produce json
// @Param status query string false "active or inactive"
// @Param subcategory_id query string false "Subcategory ID"
// @Param provider_id query string false "Provider ID"
// @Param staff_id query string false "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /services/profile [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	var query dto.CatalogListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.ListServices(c.Request.Context(), query)
	respondOK(c, items, err)
}

// GetService godoc
// @Summary Get service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Router /services/profile/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	item, err := h.service.GetService(c.Request.Context(), c.Param("id"))
	respondOK(c, item, err)
}

// UpdateService godoc
// @Summary Update service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body dto.UpdateServiceRequest true "Service fields"
// @Success 200 {object} response.Envelope
// @Router /services/{id}/edit [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req dto.UpdateServiceRequest
	if !bindJSON(c, &req, "invalid service payload") {
		return
	}
	item, err := h.service.UpdateService(c.Request.Context(), c.Param("id"), req)
	respondOK(c, item, err)
}

// DeactivateService godoc
// @Summary Deactivate service
// @Tags Catalog
// @Param id path string true "Service ID"
// @Success 204 {object} response.Envelope
// @Router /services/{id}/deactivate [put]
func (h *CatalogHandler) DeactivateService(c *gin.Context) {
	respondNoContent(c, h.service.DeactivateService(c.Request.Context(), c.Param("id")))
}

func respondOK(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

func respondCreated(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, data)
}

func respondNoContent(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
