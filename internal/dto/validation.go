package dto

import (
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern        = regexp.MustCompile(`^0\d{9,14}$`)
	countryPattern      = regexp.MustCompile(`^[A-Z]{2}$`)
	streetNumberPattern = regexp.MustCompile(`^[0-9][0-9A-Za-z/-]*$`)
	postalCodePattern   = regexp.MustCompile(`^[A-Za-z0-9\s-]+$`)
)

// ClockLayout is the wall-clock format accepted for working hours.
const ClockLayout = "15:04"

// NewValidator returns a validator with the booking-specific tags registered:
// password, phone, country, street_number, postal_code and clock.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password", validatePassword)
	_ = v.RegisterValidation("phone", matchPattern(phonePattern))
	_ = v.RegisterValidation("country", matchPattern(countryPattern))
	_ = v.RegisterValidation("street_number", matchPattern(streetNumberPattern))
	_ = v.RegisterValidation("postal_code", matchPattern(postalCodePattern))
	_ = v.RegisterValidation("clock", validateClock)
	return v
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// validatePassword requires eight characters with an uppercase letter, a digit and a symbol.
func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && digit && special
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse(ClockLayout, fl.Field().String())
	return err == nil
}
