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

type workingHoursRepository interface {
	List(ctx context.Context, filter models.WorkingHoursFilter) ([]models.WorkingHours, error)
	FindByID(ctx context.Context, id string) (*models.WorkingHours, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.WorkingHours) error
	Update(ctx context.Context, wh *models.WorkingHours) error
	Deactivate(ctx context.Context, id string) error
}

type providerFinder interface {
	FindByID(ctx context.Context, id string) (*models.ServiceProvider, error)
}

// WorkingHoursService maintains the weekly schedules of staff members.
type WorkingHoursService struct {
	db        txProvider
	hours     workingHoursRepository
	providers providerFinder
	users     userFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkingHoursService wires the working hours service.
func NewWorkingHoursService(db txProvider, hours workingHoursRepository, providers providerFinder, users userFinder, validate *validator.Validate, logger *zap.Logger) *WorkingHoursService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &WorkingHoursService{db: db, hours: hours, providers: providers, users: users, validator: validate, logger: logger}
}

// Register creates working hours for several employees of one provider. The
// whole batch is written in a single transaction.
func (s *WorkingHoursService) Register(ctx context.Context, req dto.RegisterWorkingHoursRequest) ([]models.WorkingHours, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours payload")
	}
	if _, err := s.providers.FindByID(ctx, req.ProviderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, providerNotFound(req.ProviderID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}

	var entries []models.WorkingHours
	for _, employee := range req.Employees {
		if err := ensureProviderStaff(ctx, s.users, req.ProviderID, employee.EmployeeID); err != nil {
			return nil, err
		}
		for _, wh := range employee.WorkingHours {
			if err := ensureInterval(wh.StartTime, wh.EndTime); err != nil {
				return nil, err
			}
			entries = append(entries, models.WorkingHours{
				ProviderID: req.ProviderID,
				StaffID:    employee.EmployeeID,
				DayOfWeek:  wh.DayOfWeek,
				StartTime:  wh.StartTime,
				EndTime:    wh.EndTime,
			})
		}
	}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.hours.BulkCreateWithTx(ctx, tx, entries); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register working hours")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("working hours registered", zap.String("provider_id", req.ProviderID), zap.Int("entries", len(entries)))
	return entries, nil
}

// List returns working hours filtered by provider and employee.
func (s *WorkingHoursService) List(ctx context.Context, query dto.WorkingHoursQuery) ([]models.WorkingHours, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours filter")
	}
	hours, err := s.hours.List(ctx, models.WorkingHoursFilter{ProviderID: query.ProviderID, StaffID: query.EmployeeID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list working hours")
	}
	if hours == nil {
		hours = []models.WorkingHours{}
	}
	return hours, nil
}

// Update changes the day or interval of an entry.
func (s *WorkingHoursService) Update(ctx context.Context, id string, req dto.UpdateWorkingHoursRequest) (*models.WorkingHours, error) {
	if req.DayOfWeek == nil && req.StartTime == nil && req.EndTime == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours payload")
	}
	wh, err := s.hours.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workingHoursNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	if req.DayOfWeek != nil {
		wh.DayOfWeek = *req.DayOfWeek
	}
	setString(&wh.StartTime, req.StartTime)
	setString(&wh.EndTime, req.EndTime)
	if err := ensureInterval(wh.StartTime, wh.EndTime); err != nil {
		return nil, err
	}
	if err := s.hours.Update(ctx, wh); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workingHoursNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update working hours")
	}
	return wh, nil
}

// Deactivate soft-deletes an entry so it no longer produces slots.
func (s *WorkingHoursService) Deactivate(ctx context.Context, id string) error {
	if err := s.hours.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workingHoursNotFound(id)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate working hours")
	}
	return nil
}

// ensureProviderStaff requires employeeID to be an active STAFF member of providerID.
func ensureProviderStaff(ctx context.Context, users userFinder, providerID, employeeID string) error {
	user, err := users.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Staff member with id %s does not exist", employeeID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if user.Role != models.RoleStaff || !user.Active {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Staff member with id %s does not exist", employeeID))
	}
	if user.ProviderID == nil || *user.ProviderID != providerID {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Staff member %s does not work for this provider", employeeID))
	}
	return nil
}

// ensureInterval requires two HH:MM values with start strictly before end.
func ensureInterval(start, end string) error {
	sh, sm, err := parseClock(start)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid time format. Please use HH:MM.")
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid time format. Please use HH:MM.")
	}
	if sh*60+sm >= eh*60+em {
		return appErrors.Clone(appErrors.ErrValidation, "Start time must be before end time.")
	}
	return nil
}

func workingHoursNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Working hours with id %s do not exist", id))
}
