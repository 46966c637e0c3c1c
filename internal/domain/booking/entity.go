package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrMissingPrimaryGuest = errors.New("exactly one guest must be primary")
	ErrNoGuests            = errors.New("at least one guest is required")
	ErrGuestCountMismatch  = errors.New("more guest details provided than guest count")
)

// Booking is the aggregate root pairing the vendor-agnostic order id with the
// hotel-specific reservation id. The reservation id is what availability
// reasons about; the order id is what payment state attaches to. Both live on
// one root so neither can exist without the other.
type Booking struct {
	id         uuid.UUID
	orderID    uuid.UUID
	roomID     uuid.UUID
	guestID    uuid.UUID
	stay       StayRange
	status     Status
	guestCount int
	guests     []Guest
	total      int64
	note       Note
	createdAt  time.Time
}

func newBooking(
	roomID, guestID uuid.UUID,
	stay StayRange,
	guestCount int,
	guests []Guest,
	total int64,
	note Note,
	createdAt time.Time,
) (*Booking, error) {
	if len(guests) == 0 {
		return nil, ErrNoGuests
	}
	primaries := 0
	for _, g := range guests {
		if g.IsPrimary() {
			primaries++
		}
	}
	if primaries != 1 {
		return nil, ErrMissingPrimaryGuest
	}
	if guestCount < len(guests) {
		return nil, ErrGuestCountMismatch
	}

	return &Booking{
		id:         uuid.New(),
		orderID:    uuid.New(),
		roomID:     roomID,
		guestID:    guestID,
		stay:       stay,
		status:     StatusDraft,
		guestCount: guestCount,
		guests:     guests,
		total:      total,
		note:       note,
		createdAt:  createdAt,
	}, nil
}

func ReconstructBooking(
	id, orderID, roomID, guestID uuid.UUID,
	stay StayRange,
	status Status,
	guestCount int,
	guests []Guest,
	total int64,
	note Note,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		orderID:    orderID,
		roomID:     roomID,
		guestID:    guestID,
		stay:       stay,
		status:     status,
		guestCount: guestCount,
		guests:     guests,
		total:      total,
		note:       note,
		createdAt:  createdAt,
	}
}

// MarkPending moves the booking into payment. Re-initiating payment on an
// already-pending booking is allowed; the guest may retry checkout.
func (b *Booking) MarkPending() error {
	if !b.status.CanTransitionTo(StatusPending) {
		return ErrInvalidTransition
	}
	b.status = StatusPending
	return nil
}

// Confirm is invoked only on verified payment success. It is idempotent:
// confirming an already-confirmed booking is a no-op, not an error.
func (b *Booking) Confirm() error {
	if b.status == StatusConfirmed {
		return nil
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return ErrInvalidTransition
	}
	b.status = StatusConfirmed
	return nil
}

func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	b.status = StatusCancelled
	return nil
}

// Complete marks the stay finished. Administrative transition; the engine
// never calls it on its own.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	b.status = StatusCompleted
	return nil
}

func (b *Booking) Age(now time.Time) time.Duration {
	return now.Sub(b.createdAt)
}

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) OrderID() uuid.UUID   { return b.orderID }
func (b *Booking) RoomID() uuid.UUID    { return b.roomID }
func (b *Booking) GuestID() uuid.UUID   { return b.guestID }
func (b *Booking) Stay() StayRange      { return b.stay }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) GuestCount() int      { return b.guestCount }
func (b *Booking) Guests() []Guest      { return b.guests }
func (b *Booking) TotalAmount() int64   { return b.total }
func (b *Booking) Note() Note           { return b.note }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
