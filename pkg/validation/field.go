package validation

import (
	"regexp"

	"github.com/goliatone/go-formkit/pkg/model"
)

// ErrorKind identifies why a field failed validation. The empty ErrorKind
// means the field is valid.
type ErrorKind string

const (
	ErrRequired     ErrorKind = "required"
	ErrInvalidEmail ErrorKind = "invalid_email"
	ErrInvalidPhone ErrorKind = "invalid_phone"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{8,20}$`)
)

// ValidateField checks one field against data. Hidden fields never fail.
// Requiredness is checked first; type checks only run on a non-empty answer,
// so each field yields at most one error.
func ValidateField(field model.Field, data model.FormData, visible bool) ErrorKind {
	if !visible {
		return ""
	}

	value, _ := data.Get(field.ID)
	if field.Required && value.IsEmpty() {
		return ErrRequired
	}
	if value.IsEmpty() {
		return ""
	}

	switch field.Kind {
	case model.KindEmail:
		if !emailPattern.MatchString(value.String()) {
			return ErrInvalidEmail
		}
	case model.KindPhone:
		if !phonePattern.MatchString(value.String()) {
			return ErrInvalidPhone
		}
	}
	return ""
}

// IsEmail reports whether s passes the email shape check.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }

// IsPhone reports whether s passes the phone shape check.
func IsPhone(s string) bool { return phonePattern.MatchString(s) }
