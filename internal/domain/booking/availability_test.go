//go:build unit

package booking_test

import (
	"testing"
	"time"

	"roomstay/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func snapshot(status booking.Status, age time.Duration, paid bool, now time.Time) booking.Snapshot {
	return booking.Snapshot{
		ReservationID:    uuid.New(),
		Stay:             booking.ReconstructStayRange(date(2026, time.March, 10), date(2026, time.March, 15)),
		Status:           status,
		CreatedAt:        now.Add(-age),
		PaymentSucceeded: paid,
	}
}

func TestSnapshotBlocks(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	requested := booking.ReconstructStayRange(date(2026, time.March, 12), date(2026, time.March, 14))

	cases := []struct {
		name   string
		status booking.Status
		age    time.Duration
		paid   bool
		want   bool
	}{
		{"confirmed always blocks", booking.StatusConfirmed, 100 * time.Hour, false, true},
		{"pending within grace blocks", booking.StatusPending, 29 * time.Minute, false, true},
		{"pending at grace boundary does not block", booking.StatusPending, 30 * time.Minute, false, false},
		{"stale unpaid pending does not block", booking.StatusPending, 31 * time.Minute, false, false},
		{"stale paid pending blocks", booking.StatusPending, 31 * time.Minute, true, true},
		{"paid pending blocks regardless of age", booking.StatusPending, 100 * time.Hour, true, true},
		{"draft never blocks", booking.StatusDraft, time.Minute, false, false},
		{"cancelled never blocks", booking.StatusCancelled, time.Minute, false, false},
		{"completed never blocks", booking.StatusCompleted, time.Minute, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := snapshot(tc.status, tc.age, tc.paid, now)
			assert.Equal(t, tc.want, s.Blocks(requested, now))
		})
	}

	t.Run("non-overlapping confirmed does not block", func(t *testing.T) {
		s := snapshot(booking.StatusConfirmed, time.Hour, false, now)
		disjoint := booking.ReconstructStayRange(date(2026, time.March, 20), date(2026, time.March, 22))
		assert.False(t, s.Blocks(disjoint, now))
	})

	t.Run("back-to-back confirmed does not block", func(t *testing.T) {
		s := snapshot(booking.StatusConfirmed, time.Hour, false, now)
		adjacent := booking.ReconstructStayRange(date(2026, time.March, 15), date(2026, time.March, 18))
		assert.False(t, s.Blocks(adjacent, now))
	})
}

func TestAnyBlocking(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	requested := booking.ReconstructStayRange(date(2026, time.March, 12), date(2026, time.March, 14))

	t.Run("one blocking snapshot is enough", func(t *testing.T) {
		snapshots := []booking.Snapshot{
			snapshot(booking.StatusDraft, time.Minute, false, now),
			snapshot(booking.StatusConfirmed, time.Hour, false, now),
		}
		assert.True(t, booking.AnyBlocking(snapshots, requested, now, nil))
	})

	t.Run("all benign snapshots pass", func(t *testing.T) {
		snapshots := []booking.Snapshot{
			snapshot(booking.StatusDraft, time.Minute, false, now),
			snapshot(booking.StatusCancelled, time.Hour, false, now),
			snapshot(booking.StatusPending, 45*time.Minute, false, now),
		}
		assert.False(t, booking.AnyBlocking(snapshots, requested, now, nil))
	})

	t.Run("excluded reservation is skipped", func(t *testing.T) {
		blocking := snapshot(booking.StatusPending, time.Minute, false, now)
		snapshots := []booking.Snapshot{blocking}

		assert.True(t, booking.AnyBlocking(snapshots, requested, now, nil))

		selfID := blocking.ReservationID
		assert.False(t, booking.AnyBlocking(snapshots, requested, now, &selfID))
	})

	t.Run("empty snapshot list never blocks", func(t *testing.T) {
		assert.False(t, booking.AnyBlocking(nil, requested, now, nil))
	})
}
