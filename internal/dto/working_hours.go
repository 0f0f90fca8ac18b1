package dto

// WorkingHoursEntry is one weekly interval. DayOfWeek counts from 0 (Monday).
type WorkingHoursEntry struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// EmployeeWorkingHours groups the intervals of one staff member.
type EmployeeWorkingHours struct {
	EmployeeID   string              `json:"employee_id" validate:"required,uuid"`
	WorkingHours []WorkingHoursEntry `json:"working_hours" validate:"required,min=1,dive"`
}

// RegisterWorkingHoursRequest creates working hours for several employees of a provider at once.
type RegisterWorkingHoursRequest struct {
	ProviderID string                 `json:"provider_id" validate:"required,uuid"`
	Employees  []EmployeeWorkingHours `json:"employees" validate:"required,min=1,dive"`
}

// UpdateWorkingHoursRequest replaces the interval of a working hours entry.
type UpdateWorkingHoursRequest struct {
	DayOfWeek *int    `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime   *string `json:"end_time,omitempty" validate:"omitempty,clock"`
}

// WorkingHoursQuery filters working hours listings.
type WorkingHoursQuery struct {
	ProviderID string `form:"provider_id" validate:"omitempty,uuid"`
	EmployeeID string `form:"employee_id" validate:"omitempty,uuid"`
}
