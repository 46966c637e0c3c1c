package commands

import (
	"context"
	"log/slog"

	"roomstay/internal/domain/booking"
	"roomstay/internal/infra/db"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/usecase/shared"
)

// SweepResult reports what one reaper pass removed.
type SweepResult struct {
	DraftRemoved   int64
	PendingRemoved int64
}

type ReaperCommands interface {
	SweepAbandoned(ctx context.Context) (SweepResult, error)
}

type reaperCommandsImpl struct {
	runner   shared.TxRunner
	bookings BookingRepo
	clock    clock.Clock
}

func NewReaperCommands(runner shared.TxRunner, bookings BookingRepo, clk clock.Clock) ReaperCommands {
	return &reaperCommandsImpl{
		runner:   runner,
		bookings: bookings,
		clock:    clk,
	}
}

// SweepAbandoned deletes DRAFT reservations past their TTL and unpaid PENDING
// reservations past the grace window. The pending cutoff equals the blocking
// threshold, so nothing the sweep removes could still have blocked a booking.
// Each sweep runs in its own transaction and is safe to run concurrently with
// bookings: deletion targets rows the availability rule already ignores.
func (c *reaperCommandsImpl) SweepAbandoned(ctx context.Context) (SweepResult, error) {
	now := c.clock.Now()
	draftCutoff := now.Add(-booking.DraftTTL)
	pendingCutoff := now.Add(-booking.PendingGrace)

	var result SweepResult
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		drafts, err := c.bookings.DeleteAbandonedDrafts(ctx, tx, draftCutoff)
		if err != nil {
			return err
		}
		pending, err := c.bookings.DeleteAbandonedPending(ctx, tx, pendingCutoff)
		if err != nil {
			return err
		}
		result = SweepResult{DraftRemoved: drafts, PendingRemoved: pending}
		return nil
	})
	if err != nil {
		return SweepResult{}, mapTxErr(err)
	}

	if result.DraftRemoved > 0 || result.PendingRemoved > 0 {
		slog.Info("swept abandoned reservations",
			"drafts", result.DraftRemoved,
			"pending", result.PendingRemoved)
	}
	return result, nil
}
