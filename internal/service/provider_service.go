package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
	"github.com/noah-isme/salon-booking-api/pkg/storage"
)

type providerRepository interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, provider *models.ServiceProvider) error
	InquiryConsumed(ctx context.Context, tx *sqlx.Tx, inquiryID string) (bool, error)
	AddOwnersWithTx(ctx context.Context, tx *sqlx.Tx, providerID string, ownerIDs []string) error
	FindByID(ctx context.Context, id string) (*models.ServiceProvider, error)
	List(ctx context.Context, filter models.ProviderFilter) ([]models.ServiceProvider, int, error)
	Update(ctx context.Context, provider *models.ServiceProvider) error
	Deactivate(ctx context.Context, id string) error
}

type inquiryLocker interface {
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Inquiry, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ProviderService registers salons from approved inquiries and maintains them.
type ProviderService struct {
	db        txProvider
	providers providerRepository
	inquiries inquiryLocker
	users     userFinder
	photos    storage.BlobStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProviderService wires the provider service. photos may be nil when
// uploads are disabled; a request carrying a photo then fails validation.
func NewProviderService(db txProvider, providers providerRepository, inquiries inquiryLocker, users userFinder, photos storage.BlobStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ProviderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &ProviderService{
		db:        db,
		providers: providers,
		inquiries: inquiries,
		users:     users,
		photos:    photos,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
}

// Create registers a provider. The referenced inquiry must be APPROVED and
// not yet used by another provider.
func (s *ProviderService) Create(ctx context.Context, req dto.CreateProviderRequest, actor *models.JWTClaims) (*models.ServiceProvider, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provider payload")
	}

	var photo []byte
	if req.Photo != "" {
		if s.photos == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "photo uploads are not enabled")
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Photo)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "photo must be base64 encoded")
		}
		photo = decoded
	}
	if err := s.ensureOwners(ctx, req.OwnerIDs); err != nil {
		return nil, err
	}

	provider := &models.ServiceProvider{
		ID:          uuid.NewString(),
		CompanyName: req.CompanyName,
		TradeName:   req.TradeName,
		UIC:         req.UIC,
		InquiryID:   req.InquiryID,
		OwnerIDs:    req.OwnerIDs,
		Address:     addressFromRequest(req.AddressRequest),
	}

	var photoKey string
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		inquiry, err := s.inquiries.FindByIDForUpdate(ctx, tx, req.InquiryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return inquiryNotFound(req.InquiryID)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
		}
		if inquiry.Status != models.InquiryApproved {
			return appErrors.Clone(appErrors.ErrForbidden, "A provider can only be created from an approved inquiry.")
		}
		consumed, err := s.providers.InquiryConsumed(ctx, tx, req.InquiryID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check inquiry")
		}
		if consumed {
			return appErrors.Clone(appErrors.ErrConflict, "This inquiry has already been used to register a provider.")
		}

		if photo != nil {
			photoKey = fmt.Sprintf("providers/%s.%s", provider.ID, strings.ToLower(req.PhotoExtension))
			url, err := s.photos.Put(ctx, photoKey, photo, storage.ContentTypeFor(req.PhotoExtension))
			if err != nil {
				photoKey = ""
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store provider photo")
			}
			provider.PhotoURL = &url
		}

		if err := s.providers.CreateWithTx(ctx, tx, provider); err != nil {
			if errors.Is(err, appErrors.ErrDuplicate) {
				return appErrors.Clone(appErrors.ErrDataPolicy, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create provider")
		}
		if err := s.providers.AddOwnersWithTx(ctx, tx, provider.ID, req.OwnerIDs); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link provider owners")
		}
		return nil
	})
	if err != nil {
		if photoKey != "" {
			if delErr := s.photos.Delete(ctx, photoKey); delErr != nil {
				s.logger.Warn("failed to remove orphaned provider photo", zap.String("key", photoKey), zap.Error(delErr))
			}
		}
		return nil, err
	}

	s.logger.Info("provider created", zap.String("provider_id", provider.ID), zap.String("inquiry_id", provider.InquiryID))
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionProviderCreate, "service_provider", provider.ID, nil, provider)
	return provider, nil
}

// Get returns a provider by id.
func (s *ProviderService) Get(ctx context.Context, id string) (*models.ServiceProvider, error) {
	provider, err := s.providers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, providerNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	return provider, nil
}

// List returns providers. Owners only see the providers they own.
func (s *ProviderService) List(ctx context.Context, actor *models.JWTClaims, query dto.ProviderListQuery) ([]models.ServiceProvider, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provider filter")
	}
	filter := models.ProviderFilter{Active: activeFilter(query.Status), Page: query.Page, PageSize: query.PageSize}
	if actor != nil && actor.Role == models.RoleOwner {
		filter.OwnerID = actor.UserID
	}
	items, total, err := s.providers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list providers")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Update patches the supplied provider fields.
func (s *ProviderService) Update(ctx context.Context, id string, req dto.UpdateProviderRequest, actor *models.JWTClaims) (*models.ServiceProvider, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provider payload")
	}
	provider, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.Role == models.RoleOwner && !containsString(provider.OwnerIDs, actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permissions to access this resource")
	}
	before := *provider

	setString(&provider.CompanyName, req.CompanyName)
	setString(&provider.TradeName, req.TradeName)
	setString(&provider.Country, req.Country)
	setString(&provider.City, req.City)
	setString(&provider.Street, req.Street)
	setString(&provider.StreetNumber, req.StreetNumber)
	setString(&provider.PostalCode, req.PostalCode)
	if req.District != nil {
		provider.District = req.District
	}
	if req.Neighborhood != nil {
		provider.Neighborhood = req.Neighborhood
	}
	if req.BlockNumber != nil {
		provider.BlockNumber = req.BlockNumber
	}
	if req.Apartment != nil {
		provider.Apartment = req.Apartment
	}
	if req.Floor != nil {
		provider.Floor = req.Floor
	}
	if req.Latitude != nil {
		provider.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		provider.Longitude = req.Longitude
	}

	if err := s.providers.Update(ctx, provider); err != nil {
		switch {
		case errors.Is(err, appErrors.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrDataPolicy, "")
		case errors.Is(err, sql.ErrNoRows):
			return nil, providerNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update provider")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionProviderUpdate, "service_provider", id, before, provider)
	return provider, nil
}

// Deactivate soft-deletes a provider.
func (s *ProviderService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.providers.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return providerNotFound(id)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate provider")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionProviderUpdate, "service_provider", id, nil, map[string]bool{"active": false})
	return nil
}

// ensureOwners checks that every id names an active OWNER account.
func (s *ProviderService) ensureOwners(ctx context.Context, ids []string) error {
	for _, id := range ids {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Owner with id %s does not exist", id))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner")
		}
		if user.Role != models.RoleOwner || !user.Active {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("User %s is not an active owner", id))
		}
	}
	return nil
}

func addressFromRequest(req dto.AddressRequest) models.Address {
	return models.Address{
		Country:      req.Country,
		District:     req.District,
		City:         req.City,
		Neighborhood: req.Neighborhood,
		Street:       req.Street,
		StreetNumber: req.StreetNumber,
		BlockNumber:  req.BlockNumber,
		Apartment:    req.Apartment,
		Floor:        req.Floor,
		PostalCode:   req.PostalCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
}

func providerNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Provider with id %s does not exist", id))
}

// activeFilter maps the active/inactive query value onto a tri-state flag.
func activeFilter(status string) *bool {
	var active bool
	switch status {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		return nil
	}
	return &active
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
