package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

type userService interface {
	RegisterClient(ctx context.Context, req dto.RegisterClientRequest) (*models.User, error)
	Create(ctx context.Context, req dto.CreateUserRequest, actor *models.JWTClaims) (*models.User, error)
	Profile(ctx context.Context, actor *models.JWTClaims) (*models.User, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.UserListQuery) ([]models.User, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest, actor *models.JWTClaims) (*models.User, error)
	Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error
}

// UserHandler serves client self-service and back-office user endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// RegisterClient godoc
// @Summary Register client
// @Description Public self-registration of a customer account
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body dto.RegisterClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /clients [post]
func (h *UserHandler) RegisterClient(c *gin.Context) {
	var req dto.RegisterClientRequest
	if !bindJSON(c, &req, "invalid client payload") {
		return
	}
	user, err := h.service.RegisterClient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Profile godoc
// @Summary Current profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	user, err := h.service.Profile(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// EditProfile godoc
// @Summary Edit own profile
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body dto.UpdateUserRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients/profile/edit [put]
func (h *UserHandler) EditProfile(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.update(c, claims.UserID, claims)
}

// DeactivateProfile godoc
// @Summary Deactivate own account
// @Tags Clients
// @Success 204 {object} response.Envelope
// @Router /clients/profile/deactivate [put]
func (h *UserHandler) DeactivateProfile(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.deactivate(c, claims.UserID, claims)
}

// Create godoc
// @Summary Create user
// @Description Registers a back-office user within the caller's role permissions
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/profile/{user_id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	user, err := h.service.Get(c.Request.Context(), c.Param("user_id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// List godoc
// @Summary List users
// @Description Lists the users the caller may view
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "Sort by"
// @Param order query string false "Sort order"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.UserListQuery
	if !bindQuery(c, &query) {
		return
	}
	users, pagination, err := h.service.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param payload body dto.UpdateUserRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{user_id}/edit [put]
func (h *UserHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.update(c, c.Param("user_id"), claims)
}

// Deactivate godoc
// @Summary Deactivate user
// @Description Soft deletes the user and masks personal data
// @Tags Users
// @Param user_id path string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{user_id}/deactivate [put]
func (h *UserHandler) Deactivate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.deactivate(c, c.Param("user_id"), claims)
}

func (h *UserHandler) update(c *gin.Context, id string, claims *models.JWTClaims) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	user, err := h.service.Update(c.Request.Context(), id, req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

func (h *UserHandler) deactivate(c *gin.Context, id string, claims *models.JWTClaims) {
	if err := h.service.Deactivate(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
