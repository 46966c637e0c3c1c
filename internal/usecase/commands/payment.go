package commands

import (
	"context"
	"encoding/json"

	"roomstay/internal/domain/payment"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"
	"roomstay/internal/infra/gateway"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/pkg/config"
	"roomstay/internal/pkg/errs"
	"roomstay/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound     = errs.New("payment not found")
	ErrOrderRefMismatch    = errs.New("callback order reference does not match")
	ErrSignatureInvalid    = errs.New("payment signature verification failed")
	ErrWebhookUnauthorized = errs.New("webhook signature verification failed")
	ErrUnknownWebhookEvent = errs.New("unrecognized webhook event")
)

type VerifyCallbackInput struct {
	ReservationID     uuid.UUID
	GatewayOrderRef   string
	GatewayPaymentRef string
	Signature         string
}

type RefundInput struct {
	ReservationID uuid.UUID
	AmountMinor   *int64
}

// webhookEvent is the gateway's server-to-server notification body.
type webhookEvent struct {
	Event      string `json:"event"`
	OrderRef   string `json:"order_id"`
	PaymentRef string `json:"payment_id"`
}

type PaymentCommands interface {
	VerifyCallback(ctx context.Context, viewer shared.Viewer, input VerifyCallbackInput) error
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	Refund(ctx context.Context, viewer shared.Viewer, input RefundInput) error
}

type paymentCommandsImpl struct {
	runner   shared.TxRunner
	bookings BookingRepo
	payments PaymentRepo
	gateway  gateway.Client
	clock    clock.Clock
	cfg      config.GatewayConfig
}

func NewPaymentCommands(
	runner shared.TxRunner,
	bookings BookingRepo,
	payments PaymentRepo,
	gw gateway.Client,
	clk clock.Clock,
	cfg config.Config,
) PaymentCommands {
	return &paymentCommandsImpl{
		runner:   runner,
		bookings: bookings,
		payments: payments,
		gateway:  gw,
		clock:    clk,
		cfg:      cfg.Gateway,
	}
}

// VerifyCallback handles the browser's return from gateway checkout. On a
// valid signature the payment is marked SUCCESS and the reservation confirmed
// in the same transaction. On an invalid one the payment is marked FAILED but
// the reservation stays PENDING: the guest can retry checkout, and the reaper
// collects it if they never do.
func (c *paymentCommandsImpl) VerifyCallback(ctx context.Context, viewer shared.Viewer, input VerifyCallbackInput) error {
	now := c.clock.Now()
	var sigInvalid bool
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		b, err := c.bookings.FindByID(ctx, tx, input.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}
		if b.GuestID() != viewer.ID && !viewer.IsAdmin() {
			return ErrForbidden
		}

		p, err := c.payments.FindByOrderID(ctx, tx, b.OrderID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrPaymentNotFound)
			}
			return err
		}
		if p.GatewayOrderRef() != input.GatewayOrderRef {
			return ErrOrderRefMismatch
		}

		if !payment.VerifyCheckoutSignature(input.GatewayOrderRef, input.GatewayPaymentRef, input.Signature, c.cfg.KeySecret) {
			// The FAILED mark must commit; returning the error here would
			// roll it back, so it is surfaced after the transaction.
			p.MarkFailed()
			if err := c.payments.Save(ctx, tx, p); err != nil {
				return err
			}
			sigInvalid = true
			return nil
		}

		p.MarkSuccess(input.GatewayPaymentRef, input.Signature, now)
		if err := c.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		if err := b.Confirm(); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		return c.bookings.UpdateStatus(ctx, tx, b.ID(), b.Status())
	})
	if err != nil {
		return mapTxErr(err)
	}
	if sigInvalid {
		return ErrSignatureInvalid
	}
	return nil
}

// HandleWebhook processes the gateway's server-to-server event. It is the
// safety net behind the browser callback: captured events confirm the
// reservation even when the guest's browser never returned. Replays are
// no-ops because both MarkSuccess and Confirm are idempotent.
func (c *paymentCommandsImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !payment.VerifyWebhookSignature(body, signature, c.cfg.WebhookSecret) {
		return ErrWebhookUnauthorized
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return errs.Wrap(err, "failed to decode webhook body")
	}

	now := c.clock.Now()
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		p, err := c.payments.FindByGatewayOrderRef(ctx, tx, event.OrderRef)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrPaymentNotFound)
			}
			return err
		}
		b, err := c.bookings.FindByOrderID(ctx, tx, p.OrderID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}

		switch event.Event {
		case "payment.captured":
			p.MarkSuccess(event.PaymentRef, signature, now)
			if err := c.payments.Save(ctx, tx, p); err != nil {
				return err
			}
			if err := b.Confirm(); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			return c.bookings.UpdateStatus(ctx, tx, b.ID(), b.Status())
		case "payment.failed":
			p.MarkFailed()
			return c.payments.Save(ctx, tx, p)
		default:
			return ErrUnknownWebhookEvent
		}
	})
	return mapTxErr(err)
}

// Refund reverses a captured payment, defaulting to the full amount.
func (c *paymentCommandsImpl) Refund(ctx context.Context, viewer shared.Viewer, input RefundInput) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}

	var p *payment.Payment
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		b, err := c.bookings.FindByID(ctx, tx, input.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrReservationNotFound)
			}
			return err
		}
		p, err = c.payments.FindByOrderID(ctx, tx, b.OrderID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrPaymentNotFound)
			}
			return err
		}
		if !p.Succeeded() {
			return errs.Mark(payment.ErrNotRefundable, ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return mapTxErr(err)
	}

	amount := p.Total()
	if input.AmountMinor != nil {
		amount = *input.AmountMinor
	}

	refundRef, err := c.gateway.Refund(ctx, gateway.RefundRequest{
		PaymentRef:  p.GatewayPaymentRef(),
		AmountMinor: amount,
	})
	if err != nil {
		return errs.Mark(err, ErrPaymentGateway)
	}

	err = c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		if err := p.MarkRefunded(refundRef, amount); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		return c.payments.Save(ctx, tx, p)
	})
	return mapTxErr(err)
}
