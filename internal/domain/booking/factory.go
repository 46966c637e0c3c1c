package booking

import (
	"errors"

	"roomstay/internal/domain/room"
	"roomstay/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrRoomUnavailable       = errors.New("room is not open for booking")
	ErrCapacityExceeded      = errors.New("guest count exceeds room capacity")
	ErrNonPositiveGuestCount = errors.New("guest count must be positive")
)

type Factory struct {
	Clock clock.Clock
}

func NewFactory(clock clock.Clock) *Factory {
	return &Factory{Clock: clock}
}

// CreateBooking builds a DRAFT booking priced as nights x the seasonal-or-base
// nightly rate for the check-in month. Availability against other
// reservations is not checked here; that is the transactional conflict
// check's job in the usecase layer.
func (f *Factory) CreateBooking(
	rm *room.Room,
	guestID uuid.UUID,
	stay StayRange,
	guestCount int,
	guests []Guest,
	note Note,
) (*Booking, error) {
	if guestCount <= 0 {
		return nil, ErrNonPositiveGuestCount
	}
	if !rm.IsAvailable() {
		return nil, ErrRoomUnavailable
	}
	if !rm.CanAccommodate(guestCount) {
		return nil, ErrCapacityExceeded
	}

	nightly := rm.NightlyPriceFor(stay.CheckIn().Month())
	total := int64(stay.Nights()) * nightly

	return newBooking(rm.ID(), guestID, stay, guestCount, guests, total, note, f.Clock.Now())
}
