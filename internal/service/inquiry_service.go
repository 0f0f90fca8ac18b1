package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

type inquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Inquiry, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Inquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.InquiryStatus) error
}

type transitionMetrics interface {
	ObserveTransition(entity, from, to string)
}

// InquiryService registers provider inquiries and moves them through review.
type InquiryService struct {
	db        txProvider
	inquiries inquiryRepository
	audit     auditRecorder
	metrics   transitionMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInquiryService wires the inquiry service.
func NewInquiryService(db txProvider, inquiries inquiryRepository, audit auditRecorder, metrics transitionMetrics, validate *validator.Validate, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &InquiryService{db: db, inquiries: inquiries, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// RegisterInquiry stores a new PENDING inquiry. A taken email or phone is
// reported without naming the colliding field.
func (s *InquiryService) RegisterInquiry(ctx context.Context, req dto.RegisterInquiryRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inquiry payload")
	}
	inquiry := &models.Inquiry{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		SalonName: req.SalonName,
		City:      req.City,
		Status:    models.InquiryPending,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		if errors.Is(err, appErrors.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDataPolicy, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register inquiry")
	}
	s.logger.Info("inquiry registered", zap.String("inquiry_id", inquiry.ID))
	return inquiry, nil
}

// Get returns a single inquiry.
func (s *InquiryService) Get(ctx context.Context, id string) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inquiryNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}
	return inquiry, nil
}

// List returns inquiries, optionally only those in one status.
func (s *InquiryService) List(ctx context.Context, status string, page, pageSize int) ([]models.Inquiry, *models.Pagination, error) {
	filter := models.InquiryFilter{Page: page, PageSize: pageSize}
	if status != "" {
		st := models.InquiryStatus(status)
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown inquiry status %q", status))
		}
		filter.Status = &st
	}
	items, total, err := s.inquiries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inquiries")
	}
	return items, models.NewPagination(page, pageSize, total), nil
}

// TransitionInquiry moves an inquiry to target when the lifecycle allows it.
// Any caller holding the approver permission may transition any inquiry.
func (s *InquiryService) TransitionInquiry(ctx context.Context, id string, target models.InquiryStatus, actor *models.JWTClaims) (*models.Inquiry, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown inquiry status %q", target))
	}

	var (
		updated *models.Inquiry
		from    models.InquiryStatus
	)
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		inquiry, err := s.inquiries.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return inquiryNotFound(id)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
		}
		if !models.InquiryTransitions.Allows(inquiry.Status, target) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "You do not have permissions to change the status of the inquiry")
		}
		if err := s.inquiries.UpdateStatus(ctx, tx, id, target); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update inquiry")
		}
		from = inquiry.Status
		inquiry.Status = target
		updated = inquiry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition("inquiry", string(from), string(target))
	s.logger.Info("inquiry status changed", zap.String("inquiry_id", id), zap.String("from", string(from)), zap.String("to", string(target)))
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionInquiryStatus, "inquiry", id,
		map[string]string{"status": string(from)}, map[string]string{"status": string(target)})
	return updated, nil
}

// Approve moves a PENDING inquiry to APPROVED.
func (s *InquiryService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error) {
	return s.TransitionInquiry(ctx, id, models.InquiryApproved, actor)
}

// Reject moves a PENDING inquiry to REJECTED.
func (s *InquiryService) Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error) {
	return s.TransitionInquiry(ctx, id, models.InquiryRejected, actor)
}

// NoShow marks an APPROVED inquiry whose salon never showed up.
func (s *InquiryService) NoShow(ctx context.Context, id string, actor *models.JWTClaims) (*models.Inquiry, error) {
	return s.TransitionInquiry(ctx, id, models.InquiryNoShow, actor)
}

func inquiryNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Inquiry with id %s does not exist", id))
}
