//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"roomstay/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepAbandoned(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, env *testEnv, roomID uuid.UUID) uuid.UUID {
		t.Helper()
		id, err := env.bookings.CreateReservation(ctx, guestViewer(), createInput(roomID, day(20), day(22)))
		require.NoError(t, err)
		return id
	}

	t.Run("removes drafts past the TTL", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		oldDraft := seed(t, env, rm.ID())
		env.clk.Add(booking.DraftTTL + time.Hour)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.DraftRemoved)
		assert.NotContains(t, env.store.bookings, oldDraft)
	})

	t.Run("creating a reservation sweeps opportunistically", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		oldDraft := seed(t, env, rm.ID())
		env.clk.Add(booking.DraftTTL + time.Hour)
		freshDraft := seed(t, env, rm.ID())

		assert.NotContains(t, env.store.bookings, oldDraft)
		assert.Contains(t, env.store.bookings, freshDraft)
	})

	t.Run("keeps drafts at exactly the TTL boundary", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		id := seed(t, env, rm.ID())
		env.clk.Add(booking.DraftTTL)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.DraftRemoved)
		assert.Contains(t, env.store.bookings, id)
	})

	t.Run("removes stale unpaid pending past the grace window", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		id := seed(t, env, rm.ID())
		require.NoError(t, env.store.bookings[id].MarkPending())

		env.clk.Add(booking.PendingGrace + 5*time.Minute)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.PendingRemoved)
		assert.NotContains(t, env.store.bookings, id)
	})

	t.Run("keeps pending within the grace window", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		id := seed(t, env, rm.ID())
		require.NoError(t, env.store.bookings[id].MarkPending())

		env.clk.Add(booking.PendingGrace - 5*time.Minute)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.PendingRemoved)
		assert.Contains(t, env.store.bookings, id)
	})

	t.Run("keeps stale pending whose payment captured", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)
		viewer := guestViewer()

		id, err := env.bookings.CreateReservation(ctx, viewer, createInput(rm.ID(), day(20), day(22)))
		require.NoError(t, err)
		_, err = env.bookings.InitiatePayment(ctx, viewer, id)
		require.NoError(t, err)
		env.store.payments[env.store.bookings[id].OrderID()].MarkSuccess("pay_1", "sig", env.clk.Now())

		env.clk.Add(booking.PendingGrace + time.Hour)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.PendingRemoved)
		assert.Contains(t, env.store.bookings, id)
	})

	t.Run("never touches confirmed or cancelled reservations", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		confirmed := seed(t, env, rm.ID())
		require.NoError(t, env.store.bookings[confirmed].MarkPending())
		require.NoError(t, env.store.bookings[confirmed].Confirm())

		cancelled := seed(t, env, rm.ID())
		require.NoError(t, env.store.bookings[cancelled].Cancel())

		env.clk.Add(48 * time.Hour)

		result, err := env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.DraftRemoved)
		assert.Equal(t, int64(0), result.PendingRemoved)
		assert.Contains(t, env.store.bookings, confirmed)
		assert.Contains(t, env.store.bookings, cancelled)
	})

	t.Run("reaped pending frees the room immediately", func(t *testing.T) {
		env := newTestEnv(t)
		rm := env.addRoom(2, 2000)

		id := seed(t, env, rm.ID())
		require.NoError(t, env.store.bookings[id].MarkPending())

		// Inside the grace window the pending hold blocks new bookings
		_, err := env.bookings.CreateReservation(ctx, guestViewer(), createInput(rm.ID(), day(20), day(22)))
		require.Error(t, err)

		env.clk.Add(booking.PendingGrace + time.Minute)
		_, err = env.reaper.SweepAbandoned(ctx)
		require.NoError(t, err)

		_, err = env.bookings.CreateReservation(ctx, guestViewer(), createInput(rm.ID(), day(20), day(22)))
		assert.NoError(t, err)
	})
}
