package commands

import (
	"context"
	"log/slog"
	"time"

	"roomstay/internal/domain/booking"
	"roomstay/internal/domain/payment"
	"roomstay/internal/domain/room"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"
	"roomstay/internal/infra/gateway"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/pkg/config"
	"roomstay/internal/pkg/errs"
	"roomstay/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRoomNotFound        = errs.New("room not found")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrForbidden           = errs.New("viewer may not act on this reservation")
	ErrDatesUnavailable    = errs.New("room is not available for the requested dates")
	ErrInvalidState        = errs.New("reservation state does not allow this operation")
	ErrPaymentGateway      = errs.New("payment gateway request failed")
	ErrTransactionTimeout  = errs.New("transaction timed out, please retry")
)

// BookingRepo is the write-side port for reservations.
type BookingRepo interface {
	LockRoom(ctx context.Context, tx db.DBTX, roomID uuid.UUID) error
	Snapshots(ctx context.Context, dbtx db.DBTX, roomID uuid.UUID) ([]booking.Snapshot, error)
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status booking.Status) error
	DeleteAbandonedDrafts(ctx context.Context, dbtx db.DBTX, before time.Time) (int64, error)
	DeleteAbandonedPending(ctx context.Context, dbtx db.DBTX, before time.Time) (int64, error)
}

type RoomRepo interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*room.Room, error)
}

type PaymentRepo interface {
	FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*payment.Payment, error)
	FindByGatewayOrderRef(ctx context.Context, dbtx db.DBTX, orderRef string) (*payment.Payment, error)
	Save(ctx context.Context, tx db.DBTX, p *payment.Payment) error
}

type GuestInput struct {
	Name      string
	Email     string
	Phone     string
	IsPrimary bool
}

type CreateReservationInput struct {
	RoomID     uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
	Guests     []GuestInput
	Note       string
}

// InitiatePaymentResult carries what the client needs to open the gateway
// checkout for a reservation.
type InitiatePaymentResult struct {
	ReservationID   uuid.UUID
	GatewayOrderRef string
	AmountMinor     int64
	Currency        string
}

type BookingCommands interface {
	CreateReservation(ctx context.Context, viewer shared.Viewer, input CreateReservationInput) (uuid.UUID, error)
	InitiatePayment(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) (*InitiatePaymentResult, error)
	Cancel(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) (refundInitiated bool, err error)
	Complete(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) error
}

type bookingCommandsImpl struct {
	runner            shared.TxRunner
	bookings          BookingRepo
	rooms             RoomRepo
	payments          PaymentRepo
	gateway           gateway.Client
	reaper            ReaperCommands
	factory           *booking.Factory
	clock             clock.Clock
	currency          string
	commissionPercent decimal.Decimal
}

func NewBookingCommands(
	runner shared.TxRunner,
	bookings BookingRepo,
	rooms RoomRepo,
	payments PaymentRepo,
	gw gateway.Client,
	reaper ReaperCommands,
	clk clock.Clock,
	cfg config.Config,
) (BookingCommands, error) {
	pct, err := decimal.NewFromString(cfg.Booking.CommissionPercent)
	if err != nil {
		return nil, errs.Wrap(err, "invalid commission percent")
	}
	return &bookingCommandsImpl{
		runner:            runner,
		bookings:          bookings,
		rooms:             rooms,
		payments:          payments,
		gateway:           gw,
		reaper:            reaper,
		factory:           booking.NewFactory(clk),
		clock:             clk,
		currency:          cfg.Gateway.Currency,
		commissionPercent: pct,
	}, nil
}

// CreateReservation creates a DRAFT reservation. The room row lock plus the
// in-transaction conflict check make the read-then-write exclusive per room,
// so two guests racing for the same dates cannot both pass.
func (c *bookingCommandsImpl) CreateReservation(ctx context.Context, viewer shared.Viewer, input CreateReservationInput) (uuid.UUID, error) {
	// Opportunistic sweep: failures only delay reclamation, never the booking.
	if _, err := c.reaper.SweepAbandoned(ctx); err != nil {
		slog.Warn("pre-create sweep failed", "error", err)
	}

	now := c.clock.Now()
	stay, err := booking.NewStayRange(input.CheckIn, input.CheckOut, now)
	if err != nil {
		return uuid.Nil, err
	}

	guests := make([]booking.Guest, 0, len(input.Guests))
	for _, g := range input.Guests {
		guest, err := booking.NewGuest(g.Name, g.Email, g.Phone, g.IsPrimary)
		if err != nil {
			return uuid.Nil, err
		}
		guests = append(guests, guest)
	}

	var reservationID uuid.UUID
	err = c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		if err := c.bookings.LockRoom(ctx, tx, input.RoomID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrRoomNotFound)
			}
			return err
		}

		rm, err := c.rooms.FindByID(ctx, tx, input.RoomID)
		if err != nil {
			return err
		}

		b, err := c.factory.CreateBooking(rm, viewer.ID, stay, input.GuestCount, guests, booking.NewNote(input.Note))
		if err != nil {
			return err
		}

		snapshots, err := c.bookings.Snapshots(ctx, tx, input.RoomID)
		if err != nil {
			return err
		}
		if booking.AnyBlocking(snapshots, stay, now, nil) {
			return ErrDatesUnavailable
		}

		if err := c.bookings.Create(ctx, tx, b); err != nil {
			return err
		}
		reservationID = b.ID()
		return nil
	})
	if err != nil {
		return uuid.Nil, mapTxErr(err)
	}
	return reservationID, nil
}

// InitiatePayment re-checks availability under the room lock (another
// reservation may have confirmed since the draft was created), moves the
// reservation to PENDING, then opens a gateway order. The gateway call runs
// outside the transaction: a slow or failing gateway must not hold the room
// lock, and a PENDING reservation with no order is retryable and reapable.
func (c *bookingCommandsImpl) InitiatePayment(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) (*InitiatePaymentResult, error) {
	now := c.clock.Now()

	var b *booking.Booking
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		var err error
		b, err = c.bookings.FindByID(ctx, tx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}
		if b.GuestID() != viewer.ID && !viewer.IsAdmin() {
			return ErrForbidden
		}

		existing, err := c.payments.FindByOrderID(ctx, tx, b.OrderID())
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return err
		}
		if existing != nil && existing.Succeeded() {
			return ErrInvalidState
		}

		if err := c.bookings.LockRoom(ctx, tx, b.RoomID()); err != nil {
			return err
		}
		snapshots, err := c.bookings.Snapshots(ctx, tx, b.RoomID())
		if err != nil {
			return err
		}
		selfID := b.ID()
		if booking.AnyBlocking(snapshots, b.Stay(), now, &selfID) {
			return ErrDatesUnavailable
		}

		if err := b.MarkPending(); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		return c.bookings.UpdateStatus(ctx, tx, b.ID(), b.Status())
	})
	if err != nil {
		return nil, mapTxErr(err)
	}

	orderRef, err := c.gateway.CreateOrder(ctx, gateway.OrderRequest{
		AmountMinor: b.TotalAmount(),
		Currency:    c.currency,
		Receipt:     b.ID().String(),
		Notes: map[string]string{
			"reservation_id": b.ID().String(),
			"room_id":        b.RoomID().String(),
		},
	})
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentGateway)
	}

	err = c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		p, err := c.payments.FindByOrderID(ctx, tx, b.OrderID())
		if err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return err
			}
			p, err = payment.NewPayment(b.OrderID(), b.TotalAmount(), c.commissionPercent, now)
			if err != nil {
				return err
			}
		}
		if err := p.AttachGatewayOrder(orderRef); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		return c.payments.Save(ctx, tx, p)
	})
	if err != nil {
		return nil, mapTxErr(err)
	}

	return &InitiatePaymentResult{
		ReservationID:   b.ID(),
		GatewayOrderRef: orderRef,
		AmountMinor:     b.TotalAmount(),
		Currency:        c.currency,
	}, nil
}

// Cancel moves the reservation to CANCELLED and, when the payment had already
// captured, kicks off a refund in the background and reports that to the
// caller. The refund must not block or fail the cancellation itself; a lost
// refund is reconciled manually from the gateway dashboard.
func (c *bookingCommandsImpl) Cancel(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) (bool, error) {
	var paid *payment.Payment
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		b, err := c.bookings.FindByID(ctx, tx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}
		if err := c.authorizeActor(ctx, tx, viewer, b); err != nil {
			return err
		}

		if err := b.Cancel(); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		if err := c.bookings.UpdateStatus(ctx, tx, b.ID(), b.Status()); err != nil {
			return err
		}

		p, err := c.payments.FindByOrderID(ctx, tx, b.OrderID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if p.Succeeded() {
			paid = p
		}
		return nil
	})
	if err != nil {
		return false, mapTxErr(err)
	}

	if paid != nil {
		go c.refundAsync(paid)
	}
	return paid != nil, nil
}

func (c *bookingCommandsImpl) refundAsync(p *payment.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refundRef, err := c.gateway.Refund(ctx, gateway.RefundRequest{
		PaymentRef:  p.GatewayPaymentRef(),
		AmountMinor: p.Total(),
	})
	if err != nil {
		slog.Error("refund request failed after cancellation",
			"order_id", p.OrderID(),
			"payment_ref", p.GatewayPaymentRef(),
			"error", err)
		return
	}

	if err := p.MarkRefunded(refundRef, p.Total()); err != nil {
		slog.Error("refund state update rejected", "order_id", p.OrderID(), "error", err)
		return
	}
	err = c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		return c.payments.Save(ctx, tx, p)
	})
	if err != nil {
		slog.Error("failed to persist refund", "order_id", p.OrderID(), "error", err)
	}
}

// Complete is the administrative checkout transition for a finished stay.
func (c *bookingCommandsImpl) Complete(ctx context.Context, viewer shared.Viewer, reservationID uuid.UUID) error {
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		b, err := c.bookings.FindByID(ctx, tx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}
		if !viewer.IsAdmin() {
			if err := c.authorizeVendor(ctx, tx, viewer, b); err != nil {
				return err
			}
		}

		if err := b.Complete(); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		return c.bookings.UpdateStatus(ctx, tx, b.ID(), b.Status())
	})
	return mapTxErr(err)
}

// authorizeActor allows the owning guest, the owning vendor, and admins.
func (c *bookingCommandsImpl) authorizeActor(ctx context.Context, tx db.DBTX, viewer shared.Viewer, b *booking.Booking) error {
	if viewer.IsAdmin() || b.GuestID() == viewer.ID {
		return nil
	}
	if viewer.IsVendor() {
		return c.authorizeVendor(ctx, tx, viewer, b)
	}
	return ErrForbidden
}

func (c *bookingCommandsImpl) authorizeVendor(ctx context.Context, tx db.DBTX, viewer shared.Viewer, b *booking.Booking) error {
	rm, err := c.rooms.FindByID(ctx, tx, b.RoomID())
	if err != nil {
		return err
	}
	if rm.VendorID() != viewer.ID {
		return ErrForbidden
	}
	return nil
}

func mapTxErr(err error) error {
	if err == nil {
		return nil
	}
	if shared.IsTimeout(err) {
		return errs.Mark(err, ErrTransactionTimeout)
	}
	return err
}
