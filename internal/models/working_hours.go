package models

import "time"

// WorkingHours is one recurring weekly interval for a staff member.
// DayOfWeek runs from 0 (Monday) to 6 (Sunday); times are HH:MM wall clock.
type WorkingHours struct {
	ID         string    `db:"id" json:"id"`
	ProviderID string    `db:"provider_id" json:"provider_id"`
	StaffID    string    `db:"staff_id" json:"staff_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Active     bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WorkingHoursFilter selects working hours by provider or staff member.
type WorkingHoursFilter struct {
	ProviderID string
	StaffID    string
	DayOfWeek  *int
	ActiveOnly bool
}

// Weekday converts a Go weekday into the Monday-based index used by working hours.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
