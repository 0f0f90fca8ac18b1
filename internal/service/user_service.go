package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService handles client self-service and back-office user management.
// Who may act on whom is decided by models.RolePermissions.
type UserService struct {
	repo      userRepository
	providers providerFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, providers providerFinder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &UserService{repo: repo, providers: providers, validator: validate, logger: logger}
}

// RegisterClient creates a CLIENT account from the public sign-up form.
func (s *UserService) RegisterClient(ctx context.Context, req dto.RegisterClientRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	phone := req.Phone
	user := &models.User{
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     &phone,
		Role:      models.RoleClient,
		Active:    true,
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	recordAudit(ctx, s.repo, s.logger, &models.JWTClaims{UserID: user.ID}, models.AuditActionUserCreate, "users", user.ID, nil,
		map[string]interface{}{"email": user.Email, "role": user.Role})
	return user, nil
}

// Create registers a back-office user. The actor's role must be allowed to
// create the requested role; STAFF accounts belong to exactly one provider.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actor *models.JWTClaims) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}
	if !models.CanManage(actor.Role, models.ActionCreate, req.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("You are not allowed to create %s users", req.Role))
	}
	if err := s.ensureStaffProvider(ctx, req.Role, req.ProviderID, actor); err != nil {
		return nil, err
	}

	phone := req.Phone
	user := &models.User{
		Email:      strings.ToLower(req.Email),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      &phone,
		Role:       req.Role,
		ProviderID: req.ProviderID,
		Active:     true,
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	recordAudit(ctx, s.repo, s.logger, actor, models.AuditActionUserCreate, "users", user.ID, nil,
		map[string]interface{}{"email": user.Email, "role": user.Role, "provider_id": user.ProviderID})
	return user, nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, actor *models.JWTClaims) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	return s.load(ctx, actor.UserID)
}

// Get returns a user the actor is allowed to view.
func (s *UserService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	return s.authorized(ctx, id, actor, models.ActionView)
}

// List returns the users whose roles the actor may view.
func (s *UserService) List(ctx context.Context, actor *models.JWTClaims, query dto.UserListQuery) ([]models.User, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user filter")
	}
	roles := models.ManageableRoles(actor.Role, models.ActionView)
	if query.Role != "" {
		requested := models.UserRole(query.Role)
		if !models.CanManage(actor.Role, models.ActionView, requested) {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("You are not allowed to view %s users", requested))
		}
		roles = []models.UserRole{requested}
	}
	if len(roles) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permissions to access this resource")
	}

	filter := models.UserFilter{
		Roles:     roles,
		Active:    query.Active,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.Order,
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Update patches the profile of a user the actor may edit.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest, actor *models.JWTClaims) (*models.User, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	user, err := s.authorized(ctx, id, actor, models.ActionEdit)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	before := map[string]interface{}{"email": user.Email, "first_name": user.FirstName, "last_name": user.LastName, "phone": user.Phone}

	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	setString(&user.FirstName, req.FirstName)
	setString(&user.LastName, req.LastName)
	if req.Phone != nil {
		phone := *req.Phone
		user.Phone = &phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDataPolicy, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	recordAudit(ctx, s.repo, s.logger, actor, models.AuditActionUserUpdate, "users", user.ID, before,
		map[string]interface{}{"email": user.Email, "first_name": user.FirstName, "last_name": user.LastName, "phone": user.Phone})
	return user, nil
}

// Deactivate soft-deletes a user: personal data is masked, the account is
// disabled and every refresh token is revoked.
func (s *UserService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	user, err := s.authorized(ctx, id, actor, models.ActionDeactivate)
	if err != nil {
		return err
	}
	if !user.Active {
		return nil
	}

	user.Anonymize()
	if err := s.repo.Update(ctx, user); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens of deactivated user", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.logger.Info("user deactivated", zap.String("user_id", user.ID))
	recordAudit(ctx, s.repo, s.logger, actor, models.AuditActionUserDeactivate, "users", user.ID,
		map[string]bool{"active": true}, map[string]bool{"active": false})
	return nil
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.ID = uuid.NewString()
	user.PasswordHash = hash
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrDataPolicy, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// authorized loads id and checks the actor may perform action on it. Every
// user may act on their own account.
func (s *UserService) authorized(ctx context.Context, id string, actor *models.JWTClaims, action models.PermissionAction) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.UserID {
		return user, nil
	}
	if !models.CanManage(actor.Role, action, user.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permissions to access this resource")
	}
	return user, nil
}

// ensureStaffProvider requires a provider for STAFF and forbids it for other
// roles. Owners may only add staff to providers they own.
func (s *UserService) ensureStaffProvider(ctx context.Context, role models.UserRole, providerID *string, actor *models.JWTClaims) error {
	if role != models.RoleStaff {
		if providerID != nil {
			return appErrors.Clone(appErrors.ErrValidation, "provider_id is only accepted for STAFF users")
		}
		return nil
	}
	if providerID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "provider_id is required for STAFF users")
	}
	provider, err := s.providers.FindByID(ctx, *providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return providerNotFound(*providerID)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	if !provider.Active {
		return providerNotFound(*providerID)
	}
	if actor.Role == models.RoleOwner && !containsString(provider.OwnerIDs, actor.UserID) {
		return appErrors.Clone(appErrors.ErrForbidden, "You can only add staff to your own providers")
	}
	return nil
}
