package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotRefundable      = errors.New("only successful payments can be refunded")
	ErrAlreadySucceeded   = errors.New("payment already succeeded")
	ErrNegativeAmount     = errors.New("payment amount cannot be negative")
	ErrRefundExceedsTotal = errors.New("refund amount exceeds total")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

// Payment is the at-most-one-per-order record of money movement. It is
// created lazily on first payment initiation and updated in place from then
// on; re-initiating payment refreshes the same row instead of duplicating it.
type Payment struct {
	id                uuid.UUID
	orderID           uuid.UUID
	status            Status
	gatewayOrderRef   string
	gatewayPaymentRef string
	signature         string
	total             int64
	commission        int64
	vendorShare       int64
	refundRef         *string
	refundAmount      *int64
	processedAt       *time.Time
	createdAt         time.Time
}

// NewPayment splits total into platform commission and vendor share using
// decimal math so percentage rates never drift on large amounts. The split is
// banker-neutral: commission rounds half-up, vendor share takes the rest.
func NewPayment(orderID uuid.UUID, total int64, commissionPercent decimal.Decimal, createdAt time.Time) (*Payment, error) {
	if total < 0 {
		return nil, ErrNegativeAmount
	}

	commission := decimal.NewFromInt(total).
		Mul(commissionPercent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	return &Payment{
		id:          uuid.New(),
		orderID:     orderID,
		status:      StatusPending,
		total:       total,
		commission:  commission,
		vendorShare: total - commission,
		createdAt:   createdAt,
	}, nil
}

func ReconstructPayment(
	id, orderID uuid.UUID,
	status Status,
	gatewayOrderRef, gatewayPaymentRef, signature string,
	total, commission, vendorShare int64,
	refundRef *string,
	refundAmount *int64,
	processedAt *time.Time,
	createdAt time.Time,
) *Payment {
	return &Payment{
		id:                id,
		orderID:           orderID,
		status:            status,
		gatewayOrderRef:   gatewayOrderRef,
		gatewayPaymentRef: gatewayPaymentRef,
		signature:         signature,
		total:             total,
		commission:        commission,
		vendorShare:       vendorShare,
		refundRef:         refundRef,
		refundAmount:      refundAmount,
		processedAt:       processedAt,
		createdAt:         createdAt,
	}
}

// AttachGatewayOrder records the gateway order reference and resets the row
// to PENDING. Called on every payment initiation, including retries after a
// failed attempt.
func (p *Payment) AttachGatewayOrder(ref string) error {
	if p.status == StatusSuccess {
		return ErrAlreadySucceeded
	}
	p.gatewayOrderRef = ref
	p.status = StatusPending
	return nil
}

// MarkSuccess stamps the verified payment. Idempotent: a webhook landing
// after the checkout callback already confirmed is a no-op.
func (p *Payment) MarkSuccess(gatewayPaymentRef, signature string, processedAt time.Time) {
	if p.status == StatusSuccess {
		return
	}
	p.status = StatusSuccess
	p.gatewayPaymentRef = gatewayPaymentRef
	p.signature = signature
	p.processedAt = &processedAt
}

// MarkFailed records a verification failure. A payment that already
// succeeded is never downgraded; late or replayed failure events lose.
func (p *Payment) MarkFailed() {
	if p.status == StatusSuccess || p.status == StatusRefunded {
		return
	}
	p.status = StatusFailed
}

func (p *Payment) MarkRefunded(refundRef string, amount int64) error {
	if p.status != StatusSuccess {
		return ErrNotRefundable
	}
	if amount > p.total {
		return ErrRefundExceedsTotal
	}
	p.status = StatusRefunded
	p.refundRef = &refundRef
	p.refundAmount = &amount
	return nil
}

func (p *Payment) Succeeded() bool {
	return p.status == StatusSuccess
}

func (p *Payment) ID() uuid.UUID             { return p.id }
func (p *Payment) OrderID() uuid.UUID        { return p.orderID }
func (p *Payment) Status() Status            { return p.status }
func (p *Payment) GatewayOrderRef() string   { return p.gatewayOrderRef }
func (p *Payment) GatewayPaymentRef() string { return p.gatewayPaymentRef }
func (p *Payment) Signature() string         { return p.signature }
func (p *Payment) Total() int64              { return p.total }
func (p *Payment) Commission() int64         { return p.commission }
func (p *Payment) VendorShare() int64        { return p.vendorShare }
func (p *Payment) RefundRef() *string        { return p.refundRef }
func (p *Payment) RefundAmount() *int64      { return p.refundAmount }
func (p *Payment) ProcessedAt() *time.Time   { return p.processedAt }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
