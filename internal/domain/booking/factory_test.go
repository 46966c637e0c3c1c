//go:build unit

package booking_test

import (
	"testing"
	"time"

	"roomstay/internal/domain/booking"
	"roomstay/internal/domain/room"
	"roomstay/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasonalRoom(t *testing.T, available bool) *room.Room {
	t.Helper()
	summer := int64(3000)
	winter := int64(2500)
	rm, err := room.NewRoom(
		uuid.New(), uuid.New(), uuid.New(),
		"Suite 7", "Alpine Lodge",
		2, 2000, &summer, &winter, available, nil,
	)
	require.NoError(t, err)
	return rm
}

func createFor(t *testing.T, rm *room.Room, checkIn, checkOut time.Time, guestCount int) (*booking.Booking, error) {
	t.Helper()
	clk := clock.NewMockClock(date(2026, time.January, 1))
	stay, err := booking.NewStayRange(checkIn, checkOut, clk.Now())
	require.NoError(t, err)

	primary, err := booking.NewGuest("Lena Fischer", "", "", true)
	require.NoError(t, err)

	factory := booking.NewFactory(clk)
	return factory.CreateBooking(rm, uuid.New(), stay, guestCount, []booking.Guest{primary}, booking.NewNote("late arrival"))
}

func TestFactoryPricing(t *testing.T) {
	t.Run("base season uses base price", func(t *testing.T) {
		b, err := createFor(t, seasonalRoom(t, true), date(2026, time.April, 10), date(2026, time.April, 13), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3*2000), b.TotalAmount())
	})

	t.Run("summer check-in uses summer price", func(t *testing.T) {
		b, err := createFor(t, seasonalRoom(t, true), date(2026, time.July, 10), date(2026, time.July, 12), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2*3000), b.TotalAmount())
	})

	t.Run("winter check-in uses winter price", func(t *testing.T) {
		b, err := createFor(t, seasonalRoom(t, true), date(2026, time.December, 20), date(2026, time.December, 24), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(4*2500), b.TotalAmount())
	})

	t.Run("check-in month decides even when the stay crosses seasons", func(t *testing.T) {
		// May 30 check-in, 4 nights into June: whole stay priced at base
		b, err := createFor(t, seasonalRoom(t, true), date(2026, time.May, 30), date(2026, time.June, 3), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(4*2000), b.TotalAmount())
	})

	t.Run("room without seasonal overrides always uses base", func(t *testing.T) {
		rm, err := room.NewRoom(uuid.New(), uuid.New(), uuid.New(), "Plain", "Inn", 2, 1500, nil, nil, true, nil)
		require.NoError(t, err)

		b, err := createFor(t, rm, date(2026, time.July, 10), date(2026, time.July, 11), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), b.TotalAmount())
	})
}

func TestFactoryValidation(t *testing.T) {
	t.Run("rejects unavailable room", func(t *testing.T) {
		_, err := createFor(t, seasonalRoom(t, false), date(2026, time.April, 10), date(2026, time.April, 12), 2)
		assert.ErrorIs(t, err, booking.ErrRoomUnavailable)
	})

	t.Run("rejects guest count over capacity", func(t *testing.T) {
		_, err := createFor(t, seasonalRoom(t, true), date(2026, time.April, 10), date(2026, time.April, 12), 3)
		assert.ErrorIs(t, err, booking.ErrCapacityExceeded)
	})

	t.Run("rejects non-positive guest count", func(t *testing.T) {
		_, err := createFor(t, seasonalRoom(t, true), date(2026, time.April, 10), date(2026, time.April, 12), 0)
		assert.ErrorIs(t, err, booking.ErrNonPositiveGuestCount)
	})
}
