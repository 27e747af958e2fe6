package booking

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/c360/coworking/errors"
)

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = time.DateOnly

// Date is a calendar date without time of day. The zero Date means unset.
type Date struct {
	time.Time
}

// NewDate returns the date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errors.Invalidf("booking", "ParseDate", "Invalid date '%s', expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.WrapInvalid(err, "Date", "UnmarshalJSON", "decode date")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Space is a bookable coworking space.
type Space struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address,omitempty"`
	ReservationIDs []int64 `json:"reservationIds"`
}

func (s Space) clone() Space {
	s.ReservationIDs = slices.Clone(s.ReservationIDs)
	return s
}

// User is a person who can hold reservations. Password never leaves the service
// in JSON.
type User struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"firstName"`
	MiddleName     string  `json:"middleName,omitempty"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Password       string  `json:"-"`
	ReservationIDs []int64 `json:"reservationIds"`
}

func (u User) clone() User {
	u.ReservationIDs = slices.Clone(u.ReservationIDs)
	return u
}

// Reservation books one space for one date on behalf of one or more users.
type Reservation struct {
	ID      int64   `json:"id"`
	Date    Date    `json:"reservationDate"`
	SpaceID int64   `json:"coworkingSpaceId"`
	UserIDs []int64 `json:"userIds"`
}

func (r Reservation) clone() Reservation {
	r.UserIDs = slices.Clone(r.UserIDs)
	return r
}
