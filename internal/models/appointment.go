package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentRejected  AppointmentStatus = "REJECTED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// AppointmentStatuses lists every appointment status in declaration order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentRejected,
	AppointmentCancelled,
	AppointmentNoShow,
	AppointmentCompleted,
}

// AppointmentTransitions holds the staff-driven edges of the appointment lifecycle.
var AppointmentTransitions = TransitionTable[AppointmentStatus]{
	AppointmentPending:   {AppointmentConfirmed, AppointmentRejected},
	AppointmentConfirmed: {AppointmentNoShow, AppointmentCancelled, AppointmentCompleted},
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	for _, known := range AppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Editable reports whether the customer may still move or cancel the appointment.
func (s AppointmentStatus) Editable() bool {
	return s == AppointmentPending || s == AppointmentConfirmed
}

// ReleasesSlot reports whether an appointment in this status no longer occupies its time window.
func (s AppointmentStatus) ReleasesSlot() bool {
	return s == AppointmentCancelled || s == AppointmentRejected
}

// SlotReleasingStatuses are excluded from conflict checks and slot computation.
var SlotReleasingStatuses = []AppointmentStatus{AppointmentCancelled, AppointmentRejected}

// Appointment is a booked service slot. DurationMinutes is read from the
// referenced service and is not persisted on the appointment row.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	ServiceID       string            `db:"service_id" json:"service_id"`
	StaffID         string            `db:"staff_id" json:"staff_id"`
	CustomerID      string            `db:"customer_id" json:"customer_id"`
	AppointmentTime time.Time         `db:"appointment_time" json:"appointment_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// EndTime returns the exclusive end of the appointment window.
func (a Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps applies the half-open interval test against [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime()) && end.After(a.AppointmentTime)
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	CustomerID string
	StaffID    string
	Status     *AppointmentStatus
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// AppointmentDetail joins an appointment with the names needed for display and notifications.
type AppointmentDetail struct {
	Appointment
	ServiceName       string `db:"service_name" json:"service_name"`
	StaffFirstName    string `db:"staff_first_name" json:"staff_first_name"`
	StaffLastName     string `db:"staff_last_name" json:"staff_last_name"`
	StaffEmail        string `db:"staff_email" json:"-"`
	CustomerFirstName string `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName  string `db:"customer_last_name" json:"customer_last_name"`
	CustomerEmail     string `db:"customer_email" json:"-"`
}

// TimeSlot is a bookable window of fixed duration.
type TimeSlot struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}
