package request

type VerifyPaymentRequest struct {
	GatewayOrderRef   string `json:"gateway_order_ref" binding:"required"`
	GatewayPaymentRef string `json:"gateway_payment_ref" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

type RefundPaymentRequest struct {
	AmountMinor *int64 `json:"amount_minor,omitempty"`
}
