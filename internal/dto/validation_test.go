package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorPasswordRule(t *testing.T) {
	v := NewValidator()
	type payload struct {
		Password string `validate:"password"`
	}

	assert.NoError(t, v.Struct(payload{Password: "Secret#123"}))
	assert.Error(t, v.Struct(payload{Password: "Ab#1xyz"}))
	assert.Error(t, v.Struct(payload{Password: "nouppercase#1"}))
	assert.Error(t, v.Struct(payload{Password: "NoDigits#here"}))
	assert.Error(t, v.Struct(payload{Password: "NoSymbol123"}))
}

func TestValidatorPhoneAndClock(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("0888123456", "phone"))
	assert.Error(t, v.Var("888123456", "phone"))
	assert.Error(t, v.Var("0888", "phone"))

	assert.NoError(t, v.Var("09:00", "clock"))
	assert.Error(t, v.Var("9am", "clock"))
	assert.Error(t, v.Var("25:00", "clock"))
}

func TestRegisterWorkingHoursRequestValidation(t *testing.T) {
	v := NewValidator()
	req := RegisterWorkingHoursRequest{
		ProviderID: "3f1c2a8e-4a5b-4c1d-9e7f-0a1b2c3d4e5f",
		Employees: []EmployeeWorkingHours{{
			EmployeeID: "8d7c6b5a-4a5b-4c1d-9e7f-0a1b2c3d4e5f",
			WorkingHours: []WorkingHoursEntry{
				{DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00"},
			},
		}},
	}
	assert.NoError(t, v.Struct(req))

	req.Employees[0].WorkingHours[0].DayOfWeek = 7
	assert.Error(t, v.Struct(req))

	req.Employees[0].WorkingHours[0].DayOfWeek = 6
	req.Employees[0].WorkingHours[0].EndTime = "5pm"
	assert.Error(t, v.Struct(req))

	req.Employees = nil
	assert.Error(t, v.Struct(req))
}
