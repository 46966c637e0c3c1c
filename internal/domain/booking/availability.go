package booking

import (
	"time"

	"github.com/google/uuid"
)

// PendingGrace is the window during which an unpaid PENDING reservation still
// blocks competing bookings. The expiry reaper deletes unpaid PENDING rows
// past the same threshold; blocking and deletion must agree on it, which is
// why both live here as one constant rather than two config knobs.
const PendingGrace = 30 * time.Minute

// DraftTTL is how long an untouched DRAFT survives before the reaper
// removes it. Drafts never block, so this is storage hygiene only.
const DraftTTL = 24 * time.Hour

// Snapshot is the slice of reservation state the availability calculator
// needs. Repositories produce it straight from a row; tests build it by hand.
type Snapshot struct {
	ReservationID    uuid.UUID
	Stay             StayRange
	Status           Status
	CreatedAt        time.Time
	PaymentSucceeded bool
}

// Blocks reports whether this reservation makes the requested range
// unavailable. A reservation blocks when its range overlaps and one of:
//
//  1. it is CONFIRMED (always, regardless of age or payment),
//  2. it is PENDING with a successful payment (money landed, confirmation
//     transition simply has not run yet),
//  3. it is PENDING within the grace window (guest mid-checkout).
//
// DRAFT, CANCELLED, COMPLETED, and stale unpaid PENDING never block: many
// guests may hold cheap, reversible drafts for the same room at once, but
// exclusivity kicks in the moment money is in motion.
func (s Snapshot) Blocks(requested StayRange, now time.Time) bool {
	if !s.Stay.Overlaps(requested) {
		return false
	}

	switch s.Status {
	case StatusConfirmed:
		return true
	case StatusPending:
		if s.PaymentSucceeded {
			return true
		}
		return now.Sub(s.CreatedAt) < PendingGrace
	default:
		return false
	}
}

// AnyBlocking runs the tiered rule over every snapshot, skipping the excluded
// reservation id (used when a reservation re-checks availability for itself
// during payment initiation).
func AnyBlocking(snapshots []Snapshot, requested StayRange, now time.Time, exclude *uuid.UUID) bool {
	for _, s := range snapshots {
		if exclude != nil && s.ReservationID == *exclude {
			continue
		}
		if s.Blocks(requested, now) {
			return true
		}
	}
	return false
}
