package room

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrNegativePrice   = errors.New("nightly price cannot be negative")
)

// Room is the vendor-managed inventory unit. It is long-lived: created at
// onboarding, mutated by vendor room management, never deleted while active
// reservations exist. The booking engine only reads it.
type Room struct {
	id           uuid.UUID
	propertyID   uuid.UUID
	vendorID     uuid.UUID
	name         string
	propertyName string
	capacity     int
	basePrice    int64
	summerPrice  *int64
	winterPrice  *int64
	isAvailable  bool
	amenities    []string
}

func NewRoom(
	id, propertyID, vendorID uuid.UUID,
	name, propertyName string,
	capacity int,
	basePrice int64,
	summerPrice, winterPrice *int64,
	isAvailable bool,
	amenities []string,
) (*Room, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if basePrice < 0 {
		return nil, ErrNegativePrice
	}
	if (summerPrice != nil && *summerPrice < 0) || (winterPrice != nil && *winterPrice < 0) {
		return nil, ErrNegativePrice
	}

	return &Room{
		id:           id,
		propertyID:   propertyID,
		vendorID:     vendorID,
		name:         name,
		propertyName: propertyName,
		capacity:     capacity,
		basePrice:    basePrice,
		summerPrice:  summerPrice,
		winterPrice:  winterPrice,
		isAvailable:  isAvailable,
		amenities:    amenities,
	}, nil
}

func (r *Room) ID() uuid.UUID         { return r.id }
func (r *Room) PropertyID() uuid.UUID { return r.propertyID }
func (r *Room) VendorID() uuid.UUID   { return r.vendorID }
func (r *Room) Name() string          { return r.name }
func (r *Room) PropertyName() string  { return r.propertyName }
func (r *Room) Capacity() int         { return r.capacity }
func (r *Room) BasePrice() int64      { return r.basePrice }
func (r *Room) IsAvailable() bool     { return r.isAvailable }
func (r *Room) Amenities() []string   { return r.amenities }

func (r *Room) CanAccommodate(guestCount int) bool {
	return guestCount > 0 && guestCount <= r.capacity
}

// NightlyPriceFor returns the seasonal override for the check-in month when
// one is set, otherwise the base price. Jun-Aug is summer, Dec-Feb is winter.
func (r *Room) NightlyPriceFor(month time.Month) int64 {
	switch month {
	case time.June, time.July, time.August:
		if r.summerPrice != nil {
			return *r.summerPrice
		}
	case time.December, time.January, time.February:
		if r.winterPrice != nil {
			return *r.winterPrice
		}
	}
	return r.basePrice
}
