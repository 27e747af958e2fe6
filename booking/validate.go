package booking

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/c360/coworking/errors"
)

// Field limits for stored entities.
const (
	MaxSpaceNameLength    = 100
	MaxSpaceAddressLength = 255
	MaxUserNameLength     = 50
	MaxEmailLength        = 255
	MinPasswordLength     = 8
	MaxPasswordLength     = 100
)

// validator collects the first validation failure for one operation.
type validator struct {
	component string
	method    string
	err       error
}

func newValidator(component, method string) *validator {
	return &validator{component: component, method: method}
}

func (v *validator) fail(format string, args ...any) {
	if v.err == nil {
		v.err = errors.Invalidf(v.component, v.method, format, args...)
	}
}

// required rejects blank values.
func (v *validator) required(label, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail("%s is required", label)
	}
}

// maxLength rejects values longer than limit characters.
func (v *validator) maxLength(label, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.fail("%s must be less than %d characters", label, limit)
	}
}

func (v *validator) email(value string) {
	v.required("Email", value)
	v.maxLength("Email", value, MaxEmailLength)
	if v.err != nil {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.fail("Invalid email format")
	}
}

func (v *validator) password(value string) {
	n := utf8.RuneCountInString(value)
	if n < MinPasswordLength || n > MaxPasswordLength {
		v.fail("Password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
	}
}

func (v *validator) positiveID(label string, id int64) {
	if id <= 0 {
		v.fail("Invalid %s ID", label)
	}
}

func (v *validator) Err() error {
	return v.err
}

func validateSpace(method string, space Space) error {
	v := newValidator("SpaceService", method)
	v.required("Name", space.Name)
	v.maxLength("Name", space.Name, MaxSpaceNameLength)
	v.maxLength("Address", space.Address, MaxSpaceAddressLength)
	return v.Err()
}

// validateUser checks a user. The password is checked only when requirePassword
// is set or a new password is supplied.
func validateUser(method string, user User, requirePassword bool) error {
	v := newValidator("UserService", method)
	v.required("First name", user.FirstName)
	v.maxLength("First name", user.FirstName, MaxUserNameLength)
	v.maxLength("Middle name", user.MiddleName, MaxUserNameLength)
	v.required("Last name", user.LastName)
	v.maxLength("Last name", user.LastName, MaxUserNameLength)
	v.email(user.Email)
	if requirePassword || user.Password != "" {
		v.password(user.Password)
	}
	return v.Err()
}

func validateReservation(method string, r Reservation, today Date) error {
	v := newValidator("ReservationService", method)
	if r.Date.IsZero() {
		v.fail("Reservation date is required")
	} else if r.Date.Before(today.Time) {
		v.fail("Reservation date must be today or in the future")
	}
	if r.SpaceID == 0 {
		v.fail("Coworking space ID is required")
	}
	v.positiveID("coworking space", r.SpaceID)
	if len(r.UserIDs) == 0 {
		v.fail("At least one user ID must be specified")
	}
	for _, id := range r.UserIDs {
		v.positiveID("user", id)
	}
	return v.Err()
}

// checkID rejects non-positive entity ids.
func checkID(component, method, label string, id int64) error {
	if id <= 0 {
		return errors.Invalidf(component, method, "Invalid %s ID", label)
	}
	return nil
}

// checkPathID rejects an update whose body id disagrees with the path id. A zero
// body id takes the path id.
func checkPathID(component, method string, pathID int64, bodyID *int64) error {
	if *bodyID == 0 {
		*bodyID = pathID
	}
	if *bodyID != pathID {
		return errors.Invalidf(component, method, "ID in path and body must match")
	}
	return nil
}
