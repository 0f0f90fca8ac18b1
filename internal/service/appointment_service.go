package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
	"github.com/noah-isme/salon-booking-api/pkg/export"
)

type appointmentRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Appointment, error)
	FindDetail(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AppointmentDetail, error)
	ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]models.Appointment, error)
	CountOverlapping(ctx context.Context, exec sqlx.ExtContext, staffID string, start, end time.Time, excludeID string) (int, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AppointmentStatus) error
	Reschedule(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error
}

type workingHoursReader interface {
	List(ctx context.Context, filter models.WorkingHoursFilter) ([]models.WorkingHours, error)
}

type serviceReader interface {
	FindService(ctx context.Context, id string) (*models.Service, error)
}

type staffDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	LockForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type appointmentNotifier interface {
	NotifyAppointment(ctx context.Context, tmpl NotificationTemplate, detail *models.AppointmentDetail) error
}

type bookingMetrics interface {
	ObserveBooking(outcome string)
	ObserveTransition(entity, from, to string)
	ObserveNotificationFailure(template string)
}

// transitionNotices maps a staff transition to the email sent to the customer.
// Transitions without an entry send nothing.
var transitionNotices = map[models.AppointmentStatus]NotificationTemplate{
	models.AppointmentConfirmed: TemplateConfirmed,
	models.AppointmentRejected:  TemplateRejected,
	models.AppointmentCancelled: TemplateCancelled,
}

var appointmentTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// AppointmentService computes availability and drives the appointment lifecycle.
type AppointmentService struct {
	db           txProvider
	appointments appointmentRepository
	hours        workingHoursReader
	services     serviceReader
	staff        staffDirectory
	notifier     appointmentNotifier
	metrics      bookingMetrics
	validator    *validator.Validate
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// NewAppointmentService wires the appointment service. loc is the scheduling
// timezone used for working hours and offset-less appointment times.
func NewAppointmentService(
	db txProvider,
	appointments appointmentRepository,
	hours workingHoursReader,
	services serviceReader,
	staff staffDirectory,
	notifier appointmentNotifier,
	metrics bookingMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	loc *time.Location,
) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if loc == nil {
		loc = time.UTC
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &AppointmentService{
		db:           db,
		appointments: appointments,
		hours:        hours,
		services:     services,
		staff:        staff,
		notifier:     notifier,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// ComputeAvailableSlots lists the free windows of durationMinutes for the staff
// member on the calendar day of date. A day without working hours yields an
// empty list.
func (s *AppointmentService) ComputeAvailableSlots(ctx context.Context, staffID string, durationMinutes int, date time.Time) ([]models.TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service duration must be positive")
	}
	// The calendar fields of date name the day; its own location is ignored.
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	weekday := models.Weekday(dayStart)
	hours, err := s.hours.List(ctx, models.WorkingHoursFilter{StaffID: staffID, DayOfWeek: &weekday, ActiveOnly: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	if len(hours) == 0 {
		return []models.TimeSlot{}, nil
	}

	booked, err := s.appointments.ListByStaffBetween(ctx, staffID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	slots, err := computeSlots(dayStart, hours, booked, time.Duration(durationMinutes)*time.Minute)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid working hours")
	}
	return slots, nil
}

// AvailableSlots resolves the service duration and computes the slots for an
// ISO-8601 calendar date.
func (s *AppointmentService) AvailableSlots(ctx context.Context, staffID, serviceID, date string) (*dto.AvailableSlotsResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date format. Please use ISO format.")
	}
	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	slots, err := s.ComputeAvailableSlots(ctx, staffID, svc.DurationMinutes, day)
	if err != nil {
		return nil, err
	}
	return &dto.AvailableSlotsResponse{AvailableSlots: slots}, nil
}

// IsSlotBooked reports whether an appointment occupying time for the staff member
// overlaps [start, start+duration). Cancelled and rejected appointments do not count.
func (s *AppointmentService) IsSlotBooked(ctx context.Context, staffID string, start time.Time, durationMinutes int) (bool, error) {
	if durationMinutes <= 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "service duration must be positive")
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	count, err := s.appointments.CountOverlapping(ctx, nil, staffID, start, end, "")
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
	}
	return count > 0, nil
}

// CreateAppointment books a PENDING appointment for the acting client and
// notifies the staff member. The conflict check and insert run under a lock on
// the staff member's row.
func (s *AppointmentService) CreateAppointment(ctx context.Context, req dto.CreateAppointmentRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}
	start, err := s.parseAppointmentTime(req.AppointmentTime)
	if err != nil {
		return nil, err
	}

	svc, err := s.loadService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	staff, err := s.loadStaff(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}
	if err := offeredBy(svc, staff); err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	if err := s.ensureWorkingHours(ctx, staff.ID, start, end); err != nil {
		return nil, err
	}

	var detail *models.AppointmentDetail
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.ensureSlotFree(ctx, tx, staff.ID, start, end, ""); err != nil {
			return err
		}

		appt := &models.Appointment{
			ServiceID:       svc.ID,
			StaffID:         staff.ID,
			CustomerID:      actor.UserID,
			AppointmentTime: start,
			DurationMinutes: svc.DurationMinutes,
			Status:          models.AppointmentPending,
		}
		if err := s.appointments.Create(ctx, tx, appt); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
		}

		var err error
		detail, err = s.notify(ctx, tx, appt.ID, TemplateBooked)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBooking(BookingOutcomeCreated)
	s.logger.Info("appointment booked",
		zap.String("appointment_id", detail.ID),
		zap.String("staff_id", detail.StaffID),
		zap.Time("appointment_time", detail.AppointmentTime),
	)
	return detail, nil
}

// EditAppointment moves the client's appointment to a new time, optionally with
// another service. The appointment returns to PENDING and the customer is notified.
func (s *AppointmentService) EditAppointment(ctx context.Context, id string, req dto.EditAppointmentRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}
	start, err := s.parseAppointmentTime(req.AppointmentTime)
	if err != nil {
		return nil, err
	}

	var (
		detail     *models.AppointmentDetail
		fromStatus models.AppointmentStatus
	)
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		appt, err := s.lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if appt.CustomerID != actor.UserID {
			return appErrors.Clone(appErrors.ErrWrongActor, "")
		}
		if !appt.Status.Editable() {
			return appErrors.Clone(appErrors.ErrNotEditable, "")
		}
		fromStatus = appt.Status

		if req.ServiceID != nil && *req.ServiceID != appt.ServiceID {
			svc, err := s.loadService(ctx, *req.ServiceID)
			if err != nil {
				return err
			}
			staff, err := s.loadStaff(ctx, appt.StaffID)
			if err != nil {
				return err
			}
			if err := offeredBy(svc, staff); err != nil {
				return err
			}
			appt.ServiceID = svc.ID
			appt.DurationMinutes = svc.DurationMinutes
		}

		end := start.Add(time.Duration(appt.DurationMinutes) * time.Minute)
		if err := s.ensureWorkingHours(ctx, appt.StaffID, start, end); err != nil {
			return err
		}
		if err := s.ensureSlotFree(ctx, tx, appt.StaffID, start, end, appt.ID); err != nil {
			return err
		}

		appt.AppointmentTime = start
		appt.Status = models.AppointmentPending
		if err := s.appointments.Reschedule(ctx, tx, appt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Appointment with id %s does not exist", id))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
		}

		detail, err = s.notify(ctx, tx, appt.ID, TemplateUpdated)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBooking(BookingOutcomeRescheduled)
	if fromStatus != models.AppointmentPending {
		s.metrics.ObserveTransition("appointment", string(fromStatus), string(models.AppointmentPending))
	}
	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", detail.ID),
		zap.String("from", string(fromStatus)),
		zap.Time("appointment_time", detail.AppointmentTime),
	)
	return detail, nil
}

// DeleteAppointment is the client's cancellation of their own appointment. The
// row is kept in CANCELLED status and the staff member is notified.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}

	var fromStatus models.AppointmentStatus
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		appt, err := s.lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if appt.CustomerID != actor.UserID {
			return appErrors.Clone(appErrors.ErrWrongActor, "")
		}
		if !appt.Status.Editable() {
			return appErrors.Clone(appErrors.ErrNotEditable, "")
		}
		fromStatus = appt.Status

		if err := s.updateStatus(ctx, tx, id, models.AppointmentCancelled); err != nil {
			return err
		}
		_, err = s.notify(ctx, tx, id, TemplateCustomerCancelled)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition("appointment", string(fromStatus), string(models.AppointmentCancelled))
	s.logger.Info("appointment cancelled by customer",
		zap.String("appointment_id", id),
		zap.String("from", string(fromStatus)),
	)
	return nil
}

// Transition moves an appointment along a staff edge of the lifecycle. The edge
// must exist in the transition table and the actor must be the assigned staff
// member; both are checked, in that order.
func (s *AppointmentService) Transition(ctx context.Context, id string, actor *models.JWTClaims, target models.AppointmentStatus) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !target.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown appointment status %q", target))
	}

	var fromStatus models.AppointmentStatus
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		appt, err := s.lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if !models.AppointmentTransitions.Allows(appt.Status, target) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "")
		}
		if actor.UserID != appt.StaffID {
			return appErrors.Clone(appErrors.ErrWrongActor, "")
		}
		fromStatus = appt.Status

		if err := s.updateStatus(ctx, tx, id, target); err != nil {
			return err
		}
		if tmpl, ok := transitionNotices[target]; ok {
			_, err = s.notify(ctx, tx, id, tmpl)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition("appointment", string(fromStatus), string(target))
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(target)),
	)
	return nil
}

// Confirm accepts a pending appointment.
func (s *AppointmentService) Confirm(ctx context.Context, id string, actor *models.JWTClaims) error {
	return s.Transition(ctx, id, actor, models.AppointmentConfirmed)
}

// Reject declines a pending appointment.
func (s *AppointmentService) Reject(ctx context.Context, id string, actor *models.JWTClaims) error {
	return s.Transition(ctx, id, actor, models.AppointmentRejected)
}

// Cancel cancels a confirmed appointment on the staff side.
func (s *AppointmentService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) error {
	return s.Transition(ctx, id, actor, models.AppointmentCancelled)
}

// NoShow marks a confirmed appointment as missed by the client.
func (s *AppointmentService) NoShow(ctx context.Context, id string, actor *models.JWTClaims) error {
	return s.Transition(ctx, id, actor, models.AppointmentNoShow)
}

// Complete closes a confirmed appointment.
func (s *AppointmentService) Complete(ctx context.Context, id string, actor *models.JWTClaims) error {
	return s.Transition(ctx, id, actor, models.AppointmentCompleted)
}

// List returns the appointments visible to the actor: clients see their own,
// staff see the ones assigned to them and admins see all.
func (s *AppointmentService) List(ctx context.Context, actor *models.JWTClaims, query dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment filter")
	}

	filter := models.AppointmentFilter{Page: query.Page, PageSize: query.PageSize}
	switch actor.Role {
	case models.RoleClient:
		filter.CustomerID = actor.UserID
	case models.RoleStaff:
		filter.StaffID = actor.UserID
	case models.RoleAdmin:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permissions to access this resource")
	}
	if query.Status != "" {
		status := models.AppointmentStatus(query.Status)
		filter.Status = &status
	}
	if query.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", query.Date, s.loc)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date format. Please use ISO format.")
		}
		next := day.AddDate(0, 0, 1)
		filter.From, filter.To = &day, &next
	}

	items, total, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ExportAgenda renders the staff member's appointments for one day.
func (s *AppointmentService) ExportAgenda(ctx context.Context, actor *models.JWTClaims, query dto.AgendaQuery) ([]byte, export.Exporter, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid agenda query")
	}
	exporter, err := export.ForFormat(query.Format)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported format")
	}
	day, err := time.ParseInLocation("2006-01-02", query.Date, s.loc)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date format. Please use ISO format.")
	}
	next := day.AddDate(0, 0, 1)

	items, _, err := s.appointments.List(ctx, models.AppointmentFilter{
		StaffID:  actor.UserID,
		From:     &day,
		To:       &next,
		PageSize: 100,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load agenda")
	}

	dataset := export.Dataset{
		Title:    "Daily agenda",
		Subtitle: fmt.Sprintf("%s (%s)", day.Format("Monday, 2 January 2006"), s.loc.String()),
		Columns: []export.Column{
			{Key: "start", Label: "Start", Width: 1},
			{Key: "end", Label: "End", Width: 1},
			{Key: "service", Label: "Service", Width: 3},
			{Key: "client", Label: "Client", Width: 3},
			{Key: "status", Label: "Status", Width: 2},
		},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"start":   item.AppointmentTime.In(s.loc).Format("15:04"),
			"end":     item.EndTime().In(s.loc).Format("15:04"),
			"service": item.ServiceName,
			"client":  joinName(item.CustomerFirstName, item.CustomerLastName),
			"status":  string(item.Status),
		})
	}

	out, err := exporter.Render(dataset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render agenda")
	}
	return out, exporter, nil
}

func (s *AppointmentService) parseAppointmentTime(raw string) (time.Time, error) {
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		for _, layout := range appointmentTimeLayouts {
			if start, err = time.ParseInLocation(layout, raw, s.loc); err == nil {
				break
			}
		}
	}
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid appointment time format. Please use ISO format.")
	}
	start = start.In(s.loc)
	if !start.After(s.now()) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "Appointment time must be in the future.")
	}
	return start, nil
}

func (s *AppointmentService) loadService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.services.FindService(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Service with id %s does not exist", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	if !svc.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Service with id %s does not exist", id))
	}
	return svc, nil
}

func (s *AppointmentService) loadStaff(ctx context.Context, id string) (*models.User, error) {
	user, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Staff member with id %s does not exist", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if user.Role != models.RoleStaff || !user.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Staff member with id %s does not exist", id))
	}
	return user, nil
}

// offeredBy rejects a service that belongs to another provider or is pinned to another staff member.
func offeredBy(svc *models.Service, staff *models.User) error {
	if svc.StaffID != nil && *svc.StaffID != staff.ID {
		return appErrors.Clone(appErrors.ErrValidation, "The selected service is not offered by this staff member.")
	}
	if staff.ProviderID != nil && *staff.ProviderID != svc.ProviderID {
		return appErrors.Clone(appErrors.ErrValidation, "The selected service is not offered by this staff member.")
	}
	return nil
}

func (s *AppointmentService) ensureWorkingHours(ctx context.Context, staffID string, start, end time.Time) error {
	weekday := models.Weekday(start)
	hours, err := s.hours.List(ctx, models.WorkingHoursFilter{StaffID: staffID, DayOfWeek: &weekday, ActiveOnly: true})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	if len(hours) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "This staff member has no working hours defined.")
	}
	if !withinWorkingHours(hours, start, end) {
		return appErrors.Clone(appErrors.ErrValidation, "Appointment time is outside of working hours.")
	}
	return nil
}

// ensureSlotFree locks the staff member and fails with ErrSlotBooked when
// [start, end) overlaps another occupying appointment.
func (s *AppointmentService) ensureSlotFree(ctx context.Context, tx *sqlx.Tx, staffID string, start, end time.Time, excludeID string) error {
	if err := s.staff.LockForUpdateWithTx(ctx, tx, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Staff member with id %s does not exist", staffID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock staff member")
	}
	count, err := s.appointments.CountOverlapping(ctx, tx, staffID, start, end, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
	}
	if count > 0 {
		s.metrics.ObserveBooking(BookingOutcomeConflict)
		return appErrors.Clone(appErrors.ErrSlotBooked, "")
	}
	return nil
}

func (s *AppointmentService) lockAppointment(ctx context.Context, tx *sqlx.Tx, id string) (*models.Appointment, error) {
	appt, err := s.appointments.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Appointment with id %s does not exist", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appt, nil
}

func (s *AppointmentService) updateStatus(ctx context.Context, tx *sqlx.Tx, id string, status models.AppointmentStatus) error {
	if err := s.appointments.UpdateStatus(ctx, tx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Appointment with id %s does not exist", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment status")
	}
	return nil
}

// notify loads the appointment detail inside tx and sends tmpl. A failed send
// is returned so the enclosing transaction rolls back.
func (s *AppointmentService) notify(ctx context.Context, tx *sqlx.Tx, id string, tmpl NotificationTemplate) (*models.AppointmentDetail, error) {
	detail, err := s.appointments.FindDetail(ctx, tx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment detail")
	}
	if s.notifier == nil {
		return detail, nil
	}
	if err := s.notifier.NotifyAppointment(ctx, tmpl, detail); err != nil {
		s.metrics.ObserveNotificationFailure(string(tmpl))
		s.logger.Error("appointment notification failed",
			zap.String("appointment_id", id),
			zap.String("template", string(tmpl)),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send appointment notification")
	}
	return detail, nil
}
