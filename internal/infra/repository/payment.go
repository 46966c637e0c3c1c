package repository

import (
	"context"
	"time"

	"roomstay/internal/domain/payment"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"

	"github.com/google/uuid"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: dbtx}
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*payment.Payment, error) {
	var (
		id                uuid.UUID
		status            string
		orderRef          string
		paymentRef        string
		signature         string
		total, commission int64
		vendorShare       int64
		refundRef         *string
		refundAmount      *int64
		processedAt       *time.Time
		createdAt         time.Time
	)
	err := dbtx.QueryRow(ctx, `
		SELECT id, status, gateway_order_ref, gateway_payment_ref, signature,
		       total_amount, commission_amount, vendor_amount,
		       refund_ref, refund_amount, processed_at, created_at
		FROM payments WHERE order_id = $1`, orderID).Scan(
		&id, &status, &orderRef, &paymentRef, &signature,
		&total, &commission, &vendorShare,
		&refundRef, &refundAmount, &processedAt, &createdAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by order ID", err)
	}

	return payment.ReconstructPayment(
		id, orderID, payment.Status(status),
		orderRef, paymentRef, signature,
		total, commission, vendorShare,
		refundRef, refundAmount, processedAt, createdAt,
	), nil
}

// FindByGatewayOrderRef looks a payment up by the gateway's order reference,
// the only identifier webhook events carry.
func (r *PaymentRepository) FindByGatewayOrderRef(ctx context.Context, dbtx db.DBTX, orderRef string) (*payment.Payment, error) {
	var orderID uuid.UUID
	err := dbtx.QueryRow(ctx, `SELECT order_id FROM payments WHERE gateway_order_ref = $1`, orderRef).Scan(&orderID)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found for gateway order ref", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by gateway order ref", err)
	}
	return r.FindByOrderID(ctx, dbtx, orderID)
}

// Save upserts on order_id: the first payment initiation inserts the row,
// every later initiation or state change updates it in place.
func (r *PaymentRepository) Save(ctx context.Context, tx db.DBTX, p *payment.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (id, order_id, status, gateway_order_ref, gateway_payment_ref,
		                      signature, total_amount, commission_amount, vendor_amount,
		                      refund_ref, refund_amount, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (order_id) DO UPDATE SET
			status = EXCLUDED.status,
			gateway_order_ref = EXCLUDED.gateway_order_ref,
			gateway_payment_ref = EXCLUDED.gateway_payment_ref,
			signature = EXCLUDED.signature,
			refund_ref = EXCLUDED.refund_ref,
			refund_amount = EXCLUDED.refund_amount,
			processed_at = EXCLUDED.processed_at`,
		p.ID(), p.OrderID(), p.Status().String(), p.GatewayOrderRef(), p.GatewayPaymentRef(),
		p.Signature(), p.Total(), p.Commission(), p.VendorShare(),
		p.RefundRef(), p.RefundAmount(), p.ProcessedAt(), p.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to save payment", err)
	}
	return nil
}
