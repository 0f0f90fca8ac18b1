package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

// Catalog tables accepted by the repository's soft delete.
const (
	catalogCategories    = "categories"
	catalogSubcategories = "subcategories"
	catalogServices      = "services"
)

type catalogRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, filter models.CatalogFilter) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	FindSubcategory(ctx context.Context, id string) (*models.Subcategory, error)
	ListSubcategories(ctx context.Context, filter models.CatalogFilter) ([]models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error
	CreateService(ctx context.Context, svc *models.Service) error
	FindService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, filter models.CatalogFilter) ([]models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) error
	Deactivate(ctx context.Context, table, id string) error
}

// CatalogService manages categories, subcategories and bookable services.
type CatalogService struct {
	repo      catalogRepository
	providers providerFinder
	users     userFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService wires the catalog service.
func NewCatalogService(repo catalogRepository, providers providerFinder, users userFinder, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &CatalogService{repo: repo, providers: providers, users: users, validator: validate, logger: logger}
}

// CreateCategory adds a category. Names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category := &models.Category{Name: req.Name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, catalogWriteError(err, "Category", "")
	}
	return category, nil
}

// GetCategory returns a category by id.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, catalogReadError(err, "Category", id)
	}
	return category, nil
}

// ListCategories returns categories filtered by status.
func (s *CatalogService) ListCategories(ctx context.Context, query dto.CatalogListQuery) ([]models.Category, error) {
	filter, err := s.catalogFilter(query)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListCategories(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// UpdateCategory renames a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req dto.CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, catalogWriteError(err, "Category", id)
	}
	return category, nil
}

// DeactivateCategory soft-deletes a category.
func (s *CatalogService) DeactivateCategory(ctx context.Context, id string) error {
	return s.deactivate(ctx, catalogCategories, "Category", id)
}

// CreateSubcategory adds a subcategory to an existing category.
func (s *CatalogService) CreateSubcategory(ctx context.Context, req dto.SubcategoryRequest) (*models.Subcategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subcategory payload")
	}
	if _, err := s.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	sub := &models.Subcategory{Name: req.Name, CategoryID: req.CategoryID}
	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, catalogWriteError(err, "Subcategory", "")
	}
	return sub, nil
}

// GetSubcategory returns a subcategory by id.
func (s *CatalogService) GetSubcategory(ctx context.Context, id string) (*models.Subcategory, error) {
	sub, err := s.repo.FindSubcategory(ctx, id)
	if err != nil {
		return nil, catalogReadError(err, "Subcategory", id)
	}
	return sub, nil
}

// ListSubcategories returns subcategories filtered by status and category.
func (s *CatalogService) ListSubcategories(ctx context.Context, query dto.CatalogListQuery) ([]models.Subcategory, error) {
	filter, err := s.catalogFilter(query)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListSubcategories(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subcategories")
	}
	if items == nil {
		items = []models.Subcategory{}
	}
	return items, nil
}

// UpdateSubcategory patches a subcategory.
func (s *CatalogService) UpdateSubcategory(ctx context.Context, id string, req dto.UpdateSubcategoryRequest) (*models.Subcategory, error) {
	if req.Name == nil && req.CategoryID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subcategory payload")
	}
	sub, err := s.GetSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	setString(&sub.Name, req.Name)
	setString(&sub.CategoryID, req.CategoryID)
	if err := s.repo.UpdateSubcategory(ctx, sub); err != nil {
		return nil, catalogWriteError(err, "Subcategory", id)
	}
	return sub, nil
}

// DeactivateSubcategory soft-deletes a subcategory.
func (s *CatalogService) DeactivateSubcategory(ctx context.Context, id string) error {
	return s.deactivate(ctx, catalogSubcategories, "Subcategory", id)
}

// CreateService adds a bookable service. When a staff member is named they
// must work for the service's provider.
func (s *CatalogService) CreateService(ctx context.Context, req dto.ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	if _, err := s.GetSubcategory(ctx, req.SubcategoryID); err != nil {
		return nil, err
	}
	if _, err := s.providers.FindByID(ctx, req.ProviderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, providerNotFound(req.ProviderID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	if req.StaffID != nil {
		if err := ensureProviderStaff(ctx, s.users, req.ProviderID, *req.StaffID); err != nil {
			return nil, err
		}
	}
	svc := &models.Service{
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		SubcategoryID:   req.SubcategoryID,
		ProviderID:      req.ProviderID,
		StaffID:         req.StaffID,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, catalogWriteError(err, "Service", "")
	}
	return svc, nil
}

// GetService returns a service by id.
func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.FindService(ctx, id)
	if err != nil {
		return nil, catalogReadError(err, "Service", id)
	}
	return svc, nil
}

// ListServices returns services filtered by status, subcategory, provider and staff.
func (s *CatalogService) ListServices(ctx context.Context, query dto.CatalogListQuery) ([]models.Service, error) {
	filter, err := s.catalogFilter(query)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListServices(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	if items == nil {
		items = []models.Service{}
	}
	return items, nil
}

// UpdateService patches a service. The provider of a service is fixed.
func (s *CatalogService) UpdateService(ctx context.Context, id string, req dto.UpdateServiceRequest) (*models.Service, error) {
	if req.Name == nil && req.Price == nil && req.DurationMinutes == nil && req.SubcategoryID == nil && req.StaffID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SubcategoryID != nil {
		if _, err := s.GetSubcategory(ctx, *req.SubcategoryID); err != nil {
			return nil, err
		}
		svc.SubcategoryID = *req.SubcategoryID
	}
	if req.StaffID != nil {
		if err := ensureProviderStaff(ctx, s.users, svc.ProviderID, *req.StaffID); err != nil {
			return nil, err
		}
		svc.StaffID = req.StaffID
	}
	setString(&svc.Name, req.Name)
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, catalogWriteError(err, "Service", id)
	}
	return svc, nil
}

// DeactivateService soft-deletes a service. Existing appointments keep it.
func (s *CatalogService) DeactivateService(ctx context.Context, id string) error {
	return s.deactivate(ctx, catalogServices, "Service", id)
}

func (s *CatalogService) deactivate(ctx context.Context, table, label, id string) error {
	if err := s.repo.Deactivate(ctx, table, id); err != nil {
		return catalogReadError(err, label, id)
	}
	s.logger.Info("catalog entry deactivated", zap.String("table", table), zap.String("id", id))
	return nil
}

func (s *CatalogService) catalogFilter(query dto.CatalogListQuery) (models.CatalogFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.CatalogFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog filter")
	}
	return models.CatalogFilter{
		Active:        activeFilter(query.Status),
		CategoryID:    query.CategoryID,
		SubcategoryID: query.SubcategoryID,
		ProviderID:    query.ProviderID,
		StaffID:       query.StaffID,
	}, nil
}

func catalogReadError(err error, label, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s with id %s does not exist", label, id))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog entry")
}

func catalogWriteError(err error, label, id string) error {
	switch {
	case errors.Is(err, appErrors.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s name is already taken", label))
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s with id %s does not exist", label, id))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save catalog entry")
}
