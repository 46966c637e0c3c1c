package booking

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidStayRange = errors.New("check-out must be after check-in")
	ErrCheckInPast      = errors.New("check-in cannot be in the past")
	ErrEmptyGuestName   = errors.New("guest name cannot be empty")
)

// StayRange is the half-open [checkIn, checkOut) date range of a stay.
// Both bounds are date-granular; times of day are truncated.
type StayRange struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayRange(checkIn, checkOut time.Time, now time.Time) (StayRange, error) {
	checkIn = truncateToDate(checkIn)
	checkOut = truncateToDate(checkOut)

	if !checkOut.After(checkIn) {
		return StayRange{}, ErrInvalidStayRange
	}
	if checkIn.Before(truncateToDate(now)) {
		return StayRange{}, ErrCheckInPast
	}

	return StayRange{checkIn: checkIn, checkOut: checkOut}, nil
}

// ReconstructStayRange rebuilds a range from storage without the
// not-in-the-past rule; persisted stays may legitimately be historical.
func ReconstructStayRange(checkIn, checkOut time.Time) StayRange {
	return StayRange{checkIn: truncateToDate(checkIn), checkOut: truncateToDate(checkOut)}
}

func (r StayRange) CheckIn() time.Time {
	return r.checkIn
}

func (r StayRange) CheckOut() time.Time {
	return r.checkOut
}

func (r StayRange) Nights() int {
	return int(r.checkOut.Sub(r.checkIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (one checks out the day the other checks in) do not.
func (r StayRange) Overlaps(other StayRange) bool {
	return r.checkIn.Before(other.checkOut) && r.checkOut.After(other.checkIn)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Guest captures one occupant's identity details. Guests are created
// atomically with the reservation and never mutated independently of it.
type Guest struct {
	name      string
	email     string
	phone     string
	isPrimary bool
}

func NewGuest(name, email, phone string, isPrimary bool) (Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Guest{}, ErrEmptyGuestName
	}
	return Guest{
		name:      name,
		email:     strings.TrimSpace(email),
		phone:     strings.TrimSpace(phone),
		isPrimary: isPrimary,
	}, nil
}

func (g Guest) Name() string    { return g.name }
func (g Guest) Email() string   { return g.email }
func (g Guest) Phone() string   { return g.phone }
func (g Guest) IsPrimary() bool { return g.isPrimary }

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
