package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

// NewValidator returns a validator that reports JSON field names and knows
// the phone and slotdate rules.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", isPhone)
	_ = v.RegisterValidation("slotdate", isSlotDate)
	return v
}

// isPhone accepts 10 to 13 digits, ignoring spaces, dashes, dots, parentheses and a leading +.
func isPhone(fl validator.FieldLevel) bool {
	digits := 0
	for i, r := range fl.Field().String() {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 13
}

func isSlotDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "phone":
			parts = append(parts, fmt.Sprintf("%s must be a phone number with 10 to 13 digits", fe.Field()))
		case "slotdate":
			parts = append(parts, fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
