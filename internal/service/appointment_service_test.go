package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

const (
	testStaffID       = "11111111-1111-4111-8111-111111111111"
	testOtherStaffID  = "22222222-2222-4222-8222-222222222222"
	testClientID      = "33333333-3333-4333-8333-333333333333"
	testOtherClientID = "44444444-4444-4444-8444-444444444444"
	testServiceID     = "55555555-5555-4555-8555-555555555555"
	testLongServiceID = "66666666-6666-4666-8666-666666666666"
	testProviderID    = "77777777-7777-4777-8777-777777777777"
)

// --- Fixtures ---

type memAppointmentRepo struct {
	items map[string]*models.Appointment
	seq   int
	lists []models.AppointmentFilter
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{items: make(map[string]*models.Appointment)}
}

func (m *memAppointmentRepo) seed(appt models.Appointment) string {
	m.seq++
	if appt.ID == "" {
		appt.ID = fmt.Sprintf("appt-%d", m.seq)
	}
	m.items[appt.ID] = &appt
	return appt.ID
}

func (m *memAppointmentRepo) get(id string) models.Appointment {
	return *m.items[id]
}

func (m *memAppointmentRepo) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Appointment, error) {
	appt, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *appt
	return &copy, nil
}

func (m *memAppointmentRepo) FindDetail(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AppointmentDetail, error) {
	appt, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.AppointmentDetail{
		Appointment:       *appt,
		ServiceName:       "Haircut",
		StaffFirstName:    "Iva",
		StaffLastName:     "Koleva",
		StaffEmail:        "iva@salon.test",
		CustomerFirstName: "Ana",
		CustomerLastName:  "Petrova",
		CustomerEmail:     "ana@example.com",
	}, nil
}

func (m *memAppointmentRepo) ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range m.items {
		if appt.StaffID == staffID && !appt.AppointmentTime.Before(from) && appt.AppointmentTime.Before(to) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) CountOverlapping(ctx context.Context, exec sqlx.ExtContext, staffID string, start, end time.Time, excludeID string) (int, error) {
	count := 0
	for _, appt := range m.items {
		if appt.StaffID != staffID || appt.ID == excludeID || appt.Status.ReleasesSlot() {
			continue
		}
		if appt.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (m *memAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	m.lists = append(m.lists, filter)
	var out []models.AppointmentDetail
	for id, appt := range m.items {
		if filter.StaffID != "" && appt.StaffID != filter.StaffID {
			continue
		}
		if filter.CustomerID != "" && appt.CustomerID != filter.CustomerID {
			continue
		}
		detail, _ := m.FindDetail(ctx, nil, id)
		out = append(out, *detail)
	}
	return out, len(out), nil
}

func (m *memAppointmentRepo) Create(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error {
	appt.ID = m.seed(*appt)
	return nil
}

func (m *memAppointmentRepo) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AppointmentStatus) error {
	appt, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	appt.Status = status
	return nil
}

func (m *memAppointmentRepo) Reschedule(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error {
	if _, ok := m.items[appt.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *appt
	m.items[appt.ID] = &copy
	return nil
}

type workingHoursStub struct {
	entries []models.WorkingHours
}

func (w *workingHoursStub) List(ctx context.Context, filter models.WorkingHoursFilter) ([]models.WorkingHours, error) {
	var out []models.WorkingHours
	for _, wh := range w.entries {
		if filter.StaffID != "" && wh.StaffID != filter.StaffID {
			continue
		}
		if filter.DayOfWeek != nil && wh.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		if filter.ActiveOnly && !wh.Active {
			continue
		}
		out = append(out, wh)
	}
	return out, nil
}

type serviceCatalogStub map[string]*models.Service

func (s serviceCatalogStub) FindService(ctx context.Context, id string) (*models.Service, error) {
	if svc, ok := s[id]; ok {
		copy := *svc
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type staffDirectoryStub struct {
	users map[string]*models.User
	locks []string
}

func (s *staffDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *staffDirectoryStub) LockForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	s.locks = append(s.locks, id)
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

type sentNotice struct {
	template      NotificationTemplate
	appointmentID string
}

type recordingNotifier struct {
	sent []sentNotice
	err  error
}

func (r *recordingNotifier) NotifyAppointment(ctx context.Context, tmpl NotificationTemplate, detail *models.AppointmentDetail) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentNotice{template: tmpl, appointmentID: detail.ID})
	return nil
}

type recordingMetrics struct {
	bookings      []string
	transitions   []string
	notifyFailure []string
}

func (r *recordingMetrics) ObserveBooking(outcome string) { r.bookings = append(r.bookings, outcome) }

func (r *recordingMetrics) ObserveTransition(entity, from, to string) {
	r.transitions = append(r.transitions, entity+":"+from+"->"+to)
}

func (r *recordingMetrics) ObserveNotificationFailure(template string) {
	r.notifyFailure = append(r.notifyFailure, template)
}

type appointmentFixture struct {
	svc      *AppointmentService
	mock     sqlmock.Sqlmock
	repo     *memAppointmentRepo
	staff    *staffDirectoryStub
	notifier *recordingNotifier
	metrics  *recordingMetrics
}

func newAppointmentFixture(t *testing.T, loc *time.Location) *appointmentFixture {
	t.Helper()
	if loc == nil {
		loc = time.UTC
	}
	db, mock := newTxProviderMock(t)
	repo := newMemAppointmentRepo()
	provider := testProviderID
	staff := &staffDirectoryStub{users: map[string]*models.User{
		testStaffID:      {ID: testStaffID, Role: models.RoleStaff, Active: true, ProviderID: &provider},
		testOtherStaffID: {ID: testOtherStaffID, Role: models.RoleStaff, Active: true, ProviderID: &provider},
		testClientID:     {ID: testClientID, Role: models.RoleClient, Active: true},
	}}
	hours := &workingHoursStub{entries: []models.WorkingHours{
		{ID: "wh-1", StaffID: testStaffID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", Active: true},
		{ID: "wh-2", StaffID: testOtherStaffID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", Active: true},
		{ID: "wh-3", StaffID: testStaffID, DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", Active: false},
	}}
	services := serviceCatalogStub{
		testServiceID:     {ID: testServiceID, Name: "Haircut", DurationMinutes: 30, ProviderID: testProviderID, Active: true},
		testLongServiceID: {ID: testLongServiceID, Name: "Colouring", DurationMinutes: 60, ProviderID: testProviderID, Active: true},
	}
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}

	svc := NewAppointmentService(db, repo, hours, services, staff, notifier, metrics, nil, nil, loc)
	svc.now = func() time.Time { return time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC) }

	return &appointmentFixture{svc: svc, mock: mock, repo: repo, staff: staff, notifier: notifier, metrics: metrics}
}

func clientActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: testClientID, Role: models.RoleClient}
}

func staffActor(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStaff}
}

func errorCode(err error) string {
	return appErrors.FromError(err).Code
}

func monday(hour, minute int) time.Time {
	return time.Date(2024, 11, 18, hour, minute, 0, 0, time.UTC)
}

func (f *appointmentFixture) seed(status models.AppointmentStatus, start time.Time, minutes int) string {
	return f.repo.seed(models.Appointment{
		ServiceID:       testServiceID,
		StaffID:         testStaffID,
		CustomerID:      testClientID,
		AppointmentTime: start,
		DurationMinutes: minutes,
		Status:          status,
	})
}

// --- Slot computation ---

func TestComputeAvailableSlotsFullWorkingDay(t *testing.T) {
	f := newAppointmentFixture(t, nil)

	slots, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, monday(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 16)
	for i, slot := range slots {
		assert.Equal(t, monday(9, 0).Add(time.Duration(i)*30*time.Minute), slot.Start)
		assert.Equal(t, slot.Start.Add(30*time.Minute), slot.End)
	}
	assert.Equal(t, monday(17, 0), slots[15].End)
}

func TestComputeAvailableSlotsExcludesBookedWindow(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	f.seed(models.AppointmentConfirmed, monday(10, 0), 30)

	slots, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, monday(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 15)
	for _, slot := range slots {
		assert.NotEqual(t, monday(10, 0), slot.Start)
	}
	assert.Equal(t, monday(9, 30), slots[1].Start)
	assert.Equal(t, monday(10, 30), slots[2].Start)
}

func TestComputeAvailableSlotsReleasedStatusesFreeTheWindow(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	f.seed(models.AppointmentCancelled, monday(10, 0), 30)
	f.seed(models.AppointmentRejected, monday(11, 0), 30)
	f.seed(models.AppointmentNoShow, monday(12, 0), 30)
	f.seed(models.AppointmentCompleted, monday(13, 0), 30)

	slots, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, monday(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 14)

	starts := map[time.Time]bool{}
	for _, slot := range slots {
		starts[slot.Start] = true
	}
	assert.True(t, starts[monday(10, 0)])
	assert.True(t, starts[monday(11, 0)])
	assert.False(t, starts[monday(12, 0)])
	assert.False(t, starts[monday(13, 0)])
}

func TestComputeAvailableSlotsDayWithoutHours(t *testing.T) {
	f := newAppointmentFixture(t, nil)

	tuesday := time.Date(2024, 11, 19, 0, 0, 0, 0, time.UTC)
	slots, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, tuesday)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	wednesday := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	slots, err = f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, wednesday)
	require.NoError(t, err)
	assert.Empty(t, slots, "inactive working hours are ignored")
}

func TestComputeAvailableSlotsKeepsCalendarDayWestOfUTC(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)
	f := newAppointmentFixture(t, newYork)

	slots, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 30, monday(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.True(t, slots[0].Start.Equal(time.Date(2024, 11, 18, 9, 0, 0, 0, newYork)), "first slot %s", slots[0].Start)
	assert.True(t, slots[15].End.Equal(time.Date(2024, 11, 18, 17, 0, 0, 0, newYork)), "last slot %s", slots[15].End)
}

func TestComputeAvailableSlotsRejectsNonPositiveDuration(t *testing.T) {
	f := newAppointmentFixture(t, nil)

	_, err := f.svc.ComputeAvailableSlots(context.Background(), testStaffID, 0, monday(0, 0))
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
}

func TestAvailableSlotsResolvesServiceDuration(t *testing.T) {
	f := newAppointmentFixture(t, nil)

	resp, err := f.svc.AvailableSlots(context.Background(), testStaffID, testLongServiceID, "2024-11-18")
	require.NoError(t, err)
	assert.Len(t, resp.AvailableSlots, 8)

	_, err = f.svc.AvailableSlots(context.Background(), testStaffID, testServiceID, "18/11/2024")
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	_, err = f.svc.AvailableSlots(context.Background(), testStaffID, "99999999-9999-4999-8999-999999999999", "2024-11-18")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

// --- Booking ---

func TestBookingScenario(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	booked, err := f.svc.CreateAppointment(ctx, dto.CreateAppointmentRequest{
		StaffID:         testStaffID,
		ServiceID:       testServiceID,
		AppointmentTime: "2024-11-18T10:00:00Z",
	}, clientActor())
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentPending, booked.Status)
	assert.Equal(t, testClientID, booked.CustomerID)
	assert.Equal(t, monday(10, 0), booked.AppointmentTime.UTC())
	assert.Equal(t, []string{testStaffID}, f.staff.locks)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.CreateAppointment(ctx, dto.CreateAppointmentRequest{
		StaffID:         testStaffID,
		ServiceID:       testServiceID,
		AppointmentTime: "2024-11-18T10:15:00Z",
	}, clientActor())
	assert.Equal(t, appErrors.ErrSlotBooked.Code, errorCode(err))

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.Confirm(ctx, booked.ID, staffActor(testStaffID)))
	assert.Equal(t, models.AppointmentConfirmed, f.repo.get(booked.ID).Status)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.Complete(ctx, booked.ID, staffActor(testStaffID)))
	assert.Equal(t, models.AppointmentCompleted, f.repo.get(booked.ID).Status)

	assert.Equal(t, []sentNotice{
		{template: TemplateBooked, appointmentID: booked.ID},
		{template: TemplateConfirmed, appointmentID: booked.ID},
	}, f.notifier.sent)
	assert.Equal(t, []string{BookingOutcomeCreated, BookingOutcomeConflict}, f.metrics.bookings)
	assert.Equal(t, []string{"appointment:PENDING->CONFIRMED", "appointment:CONFIRMED->COMPLETED"}, f.metrics.transitions)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateAppointmentNeverDoubleBooks(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()

	requests := []struct {
		service string
		at      string
		ok      bool
	}{
		{testServiceID, "2024-11-18T09:00:00Z", true},
		{testLongServiceID, "2024-11-18T09:15:00Z", false},
		{testLongServiceID, "2024-11-18T09:30:00Z", true},
		{testServiceID, "2024-11-18T10:00:00Z", false},
		{testServiceID, "2024-11-18T10:30:00Z", true},
		{testLongServiceID, "2024-11-18T10:15:00Z", false},
	}
	for _, req := range requests {
		f.mock.ExpectBegin()
		if req.ok {
			f.mock.ExpectCommit()
		} else {
			f.mock.ExpectRollback()
		}
		_, err := f.svc.CreateAppointment(ctx, dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: req.service, AppointmentTime: req.at}, clientActor())
		if req.ok {
			require.NoError(t, err, req.at)
		} else {
			assert.Equal(t, appErrors.ErrSlotBooked.Code, errorCode(err), req.at)
		}
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())

	var kept []models.Appointment
	for _, appt := range f.repo.items {
		kept = append(kept, *appt)
	}
	require.Len(t, kept, 3)
	for i := range kept {
		for j := range kept {
			if i == j {
				continue
			}
			assert.False(t, kept[i].Overlaps(kept[j].AppointmentTime, kept[j].EndTime()), "%s overlaps %s", kept[i].ID, kept[j].ID)
		}
	}
}

func TestCreateAppointmentReleasedSlotsCanBeRebooked(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()
	f.seed(models.AppointmentCancelled, monday(10, 0), 30)
	f.seed(models.AppointmentRejected, monday(11, 0), 30)
	f.seed(models.AppointmentNoShow, monday(12, 0), 30)

	for _, at := range []string{"2024-11-18T10:00:00Z", "2024-11-18T11:00:00Z"} {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
		_, err := f.svc.CreateAppointment(ctx, dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: at}, clientActor())
		require.NoError(t, err, at)
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.CreateAppointment(ctx, dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: "2024-11-18T12:00:00Z"}, clientActor())
	assert.Equal(t, appErrors.ErrSlotBooked.Code, errorCode(err))

	booked, err := f.svc.IsSlotBooked(ctx, testStaffID, monday(12, 15), 15)
	require.NoError(t, err)
	assert.True(t, booked)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateAppointmentRequest
		code string
	}{
		{"malformed time", dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: "next monday"}, appErrors.ErrValidation.Code},
		{"past", dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: "2024-10-01T10:00:00Z"}, appErrors.ErrValidation.Code},
		{"outside hours", dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: "2024-11-18T16:45:00Z"}, appErrors.ErrValidation.Code},
		{"no hours that day", dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: testServiceID, AppointmentTime: "2024-11-19T10:00:00Z"}, appErrors.ErrValidation.Code},
		{"unknown service", dto.CreateAppointmentRequest{StaffID: testStaffID, ServiceID: "99999999-9999-4999-8999-999999999999", AppointmentTime: "2024-11-18T10:00:00Z"}, appErrors.ErrNotFound.Code},
		{"not staff", dto.CreateAppointmentRequest{StaffID: testClientID, ServiceID: testServiceID, AppointmentTime: "2024-11-18T10:00:00Z"}, appErrors.ErrNotFound.Code},
		{"bad id", dto.CreateAppointmentRequest{StaffID: "1", ServiceID: testServiceID, AppointmentTime: "2024-11-18T10:00:00Z"}, appErrors.ErrValidation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateAppointment(ctx, tc.req, clientActor())
			assert.Equal(t, tc.code, errorCode(err))
		})
	}
	assert.Empty(t, f.repo.items)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateAppointmentNaiveTimeUsesSchedulingLocation(t *testing.T) {
	sofia := time.FixedZone("EET", 2*60*60)
	f := newAppointmentFixture(t, sofia)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	booked, err := f.svc.CreateAppointment(context.Background(), dto.CreateAppointmentRequest{
		StaffID:         testStaffID,
		ServiceID:       testServiceID,
		AppointmentTime: "2024-11-18T09:00:00",
	}, clientActor())
	require.NoError(t, err)
	assert.Equal(t, monday(7, 0), booked.AppointmentTime.UTC())
}

func TestCreateAppointmentNotificationFailureRollsBack(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	f.notifier.err = errors.New("smtp down")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.CreateAppointment(context.Background(), dto.CreateAppointmentRequest{
		StaffID:         testStaffID,
		ServiceID:       testServiceID,
		AppointmentTime: "2024-11-18T10:00:00Z",
	}, clientActor())
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
	assert.Equal(t, []string{string(TemplateBooked)}, f.metrics.notifyFailure)
	assert.Empty(t, f.metrics.bookings)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

// --- Edit and customer cancel ---

func TestEditAppointmentExcludesItselfFromConflicts(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	id := f.seed(models.AppointmentConfirmed, monday(10, 0), 30)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	detail, err := f.svc.EditAppointment(context.Background(), id, dto.EditAppointmentRequest{AppointmentTime: "2024-11-18T10:15:00Z"}, clientActor())
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentPending, detail.Status)

	stored := f.repo.get(id)
	assert.Equal(t, monday(10, 15), stored.AppointmentTime.UTC())
	assert.Equal(t, models.AppointmentPending, stored.Status)
	assert.Equal(t, []sentNotice{{template: TemplateUpdated, appointmentID: id}}, f.notifier.sent)
	assert.Equal(t, []string{"appointment:CONFIRMED->PENDING"}, f.metrics.transitions)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestEditAppointmentConflictsWithOtherBooking(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	id := f.seed(models.AppointmentPending, monday(10, 0), 30)
	f.repo.seed(models.Appointment{StaffID: testStaffID, CustomerID: testOtherClientID, ServiceID: testServiceID, AppointmentTime: monday(11, 0), DurationMinutes: 30, Status: models.AppointmentConfirmed})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.EditAppointment(context.Background(), id, dto.EditAppointmentRequest{AppointmentTime: "2024-11-18T10:45:00Z"}, clientActor())
	assert.Equal(t, appErrors.ErrSlotBooked.Code, errorCode(err))
	assert.Equal(t, monday(10, 0), f.repo.get(id).AppointmentTime)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestEditAppointmentSwitchesService(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	id := f.seed(models.AppointmentPending, monday(10, 0), 30)
	long := testLongServiceID

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.EditAppointment(context.Background(), id, dto.EditAppointmentRequest{AppointmentTime: "2024-11-18T14:00:00Z", ServiceID: &long}, clientActor())
	require.NoError(t, err)

	stored := f.repo.get(id)
	assert.Equal(t, testLongServiceID, stored.ServiceID)
	assert.Equal(t, 60, stored.DurationMinutes)
}

func TestEditAppointmentGuards(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()
	pending := f.seed(models.AppointmentPending, monday(10, 0), 30)
	completed := f.seed(models.AppointmentCompleted, monday(9, 0), 30)
	req := dto.EditAppointmentRequest{AppointmentTime: "2024-11-18T15:00:00Z"}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.EditAppointment(ctx, pending, req, &models.JWTClaims{UserID: testOtherClientID, Role: models.RoleClient})
	assert.Equal(t, appErrors.ErrWrongActor.Code, errorCode(err))

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.EditAppointment(ctx, completed, req, clientActor())
	assert.Equal(t, appErrors.ErrNotEditable.Code, errorCode(err))

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.EditAppointment(ctx, "missing", req, clientActor())
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	assert.Empty(t, f.notifier.sent)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteAppointmentCancelsAndFreesSlot(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()
	id := f.seed(models.AppointmentPending, monday(10, 0), 30)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.DeleteAppointment(ctx, id, clientActor()))

	stored := f.repo.get(id)
	assert.Equal(t, models.AppointmentCancelled, stored.Status)
	assert.Equal(t, []sentNotice{{template: TemplateCustomerCancelled, appointmentID: id}}, f.notifier.sent)

	booked, err := f.svc.IsSlotBooked(ctx, testStaffID, monday(10, 0), 30)
	require.NoError(t, err)
	assert.False(t, booked)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err = f.svc.DeleteAppointment(ctx, id, clientActor())
	assert.Equal(t, appErrors.ErrNotEditable.Code, errorCode(err))

	other := f.seed(models.AppointmentPending, monday(11, 0), 30)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err = f.svc.DeleteAppointment(ctx, other, staffActor(testStaffID))
	assert.Equal(t, appErrors.ErrWrongActor.Code, errorCode(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

// --- Staff transitions ---

func TestTransitionFollowsTable(t *testing.T) {
	for _, from := range models.AppointmentStatuses {
		for _, to := range models.AppointmentStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newAppointmentFixture(t, nil)
				id := f.seed(from, monday(10, 0), 30)

				f.mock.ExpectBegin()
				allowed := models.AppointmentTransitions.Allows(from, to)
				if allowed {
					f.mock.ExpectCommit()
				} else {
					f.mock.ExpectRollback()
				}

				err := f.svc.Transition(context.Background(), id, staffActor(testStaffID), to)
				if allowed {
					require.NoError(t, err)
					assert.Equal(t, to, f.repo.get(id).Status)
				} else {
					assert.Equal(t, appErrors.ErrInvalidTransition.Code, errorCode(err))
					assert.Equal(t, appErrors.ErrInvalidTransition.Status, appErrors.FromError(err).Status)
					assert.Equal(t, from, f.repo.get(id).Status)
				}
				assert.NoError(t, f.mock.ExpectationsWereMet())
			})
		}
	}
}

func TestTransitionRequiresAssignedStaff(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()
	id := f.seed(models.AppointmentPending, monday(10, 0), 30)

	for _, actor := range []*models.JWTClaims{staffActor(testOtherStaffID), clientActor()} {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.svc.Confirm(ctx, id, actor)
		assert.Equal(t, appErrors.ErrWrongActor.Code, errorCode(err))
		assert.Equal(t, 403, appErrors.FromError(err).Status)
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.svc.Complete(ctx, id, staffActor(testOtherStaffID))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, errorCode(err), "table check runs before the actor check")

	assert.Equal(t, models.AppointmentPending, f.repo.get(id).Status)
	assert.Empty(t, f.notifier.sent)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTransitionNotifications(t *testing.T) {
	cases := []struct {
		from   models.AppointmentStatus
		apply  func(*AppointmentService, context.Context, string, *models.JWTClaims) error
		expect []NotificationTemplate
	}{
		{models.AppointmentPending, (*AppointmentService).Confirm, []NotificationTemplate{TemplateConfirmed}},
		{models.AppointmentPending, (*AppointmentService).Reject, []NotificationTemplate{TemplateRejected}},
		{models.AppointmentConfirmed, (*AppointmentService).Cancel, []NotificationTemplate{TemplateCancelled}},
		{models.AppointmentConfirmed, (*AppointmentService).NoShow, nil},
		{models.AppointmentConfirmed, (*AppointmentService).Complete, nil},
	}
	for _, tc := range cases {
		f := newAppointmentFixture(t, nil)
		id := f.seed(tc.from, monday(10, 0), 30)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
		require.NoError(t, tc.apply(f.svc, context.Background(), id, staffActor(testStaffID)))

		var got []NotificationTemplate
		for _, n := range f.notifier.sent {
			got = append(got, n.template)
		}
		assert.Equal(t, tc.expect, got)
	}
}

func TestTransitionNotificationFailureRollsBack(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	id := f.seed(models.AppointmentPending, monday(10, 0), 30)
	f.notifier.err = errors.New("ses throttled")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.svc.Confirm(context.Background(), id, staffActor(testStaffID))
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
	assert.Empty(t, f.metrics.transitions)
	assert.Equal(t, []string{string(TemplateConfirmed)}, f.metrics.notifyFailure)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTransitionUnknownAppointment(t *testing.T) {
	f := newAppointmentFixture(t, nil)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.svc.Confirm(context.Background(), "missing", staffActor(testStaffID))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
	assert.Equal(t, "Appointment with id missing does not exist", appErrors.FromError(err).Message)
}

// --- Listing and export ---

func TestListScopesByRole(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	ctx := context.Background()
	f.seed(models.AppointmentPending, monday(10, 0), 30)

	items, page, err := f.svc.List(ctx, clientActor(), dto.AppointmentListQuery{Status: "PENDING", Date: "2024-11-18"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.TotalCount)

	_, _, err = f.svc.List(ctx, staffActor(testStaffID), dto.AppointmentListQuery{})
	require.NoError(t, err)

	_, _, err = f.svc.List(ctx, &models.JWTClaims{UserID: "owner", Role: models.RoleOwner}, dto.AppointmentListQuery{})
	assert.Equal(t, appErrors.ErrForbidden.Code, errorCode(err))

	_, _, err = f.svc.List(ctx, clientActor(), dto.AppointmentListQuery{Status: "LOST"})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	require.Len(t, f.repo.lists, 2)
	assert.Equal(t, testClientID, f.repo.lists[0].CustomerID)
	require.NotNil(t, f.repo.lists[0].Status)
	assert.Equal(t, models.AppointmentPending, *f.repo.lists[0].Status)
	assert.Equal(t, monday(0, 0), *f.repo.lists[0].From)
	assert.Equal(t, testStaffID, f.repo.lists[1].StaffID)
	assert.Empty(t, f.repo.lists[1].CustomerID)
}

func TestExportAgendaCSV(t *testing.T) {
	f := newAppointmentFixture(t, nil)
	f.seed(models.AppointmentConfirmed, monday(10, 0), 30)

	out, exporter, err := f.svc.ExportAgenda(context.Background(), staffActor(testStaffID), dto.AgendaQuery{Date: "2024-11-18", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", exporter.ContentType())

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Start,End,Service,Client,Status", lines[0])
	assert.Equal(t, "10:00,10:30,Haircut,Ana Petrova,CONFIRMED", lines[1])

	_, _, err = f.svc.ExportAgenda(context.Background(), staffActor(testStaffID), dto.AgendaQuery{Date: "2024-11-18", Format: "xlsx"})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
}
