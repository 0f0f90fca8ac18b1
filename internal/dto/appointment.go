package dto

import "github.com/noah-isme/salon-booking-api/internal/models"

// CreateAppointmentRequest books a service with a staff member.
// AppointmentTime is RFC 3339; a value without an offset uses the scheduling timezone.
type CreateAppointmentRequest struct {
	StaffID         string `json:"staff_id" validate:"required,uuid"`
	ServiceID       string `json:"service_id" validate:"required,uuid"`
	AppointmentTime string `json:"appointment_time" validate:"required"`
}

// EditAppointmentRequest moves an appointment and optionally switches its service.
type EditAppointmentRequest struct {
	AppointmentTime string  `json:"appointment_time" validate:"required"`
	ServiceID       *string `json:"service_id,omitempty" validate:"omitempty,uuid"`
}

// AvailableSlotsResponse lists the free windows for a staff member on one day.
type AvailableSlotsResponse struct {
	AvailableSlots []models.TimeSlot `json:"available_slots"`
}

// AppointmentListQuery holds the query string filters of the appointment listing.
type AppointmentListQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=PENDING CONFIRMED REJECTED CANCELLED NO_SHOW COMPLETED"`
	Date     string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// AgendaQuery selects the day and rendering format of a staff agenda export.
type AgendaQuery struct {
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
