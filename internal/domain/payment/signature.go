package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyCheckoutSignature checks the gateway's callback signature: hex HMAC-SHA256
// over "orderRef|paymentRef" keyed with the merchant secret. Comparison is
// constant time.
func VerifyCheckoutSignature(orderRef, paymentRef, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the webhook's body signature: hex HMAC-SHA256
// over the raw event body keyed with the shared webhook secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignCheckout produces the signature the gateway would send for an
// order/payment pair. Used by tests and local gateway stubs.
func SignCheckout(orderRef, paymentRef, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignWebhook is the body-signing counterpart of SignCheckout.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
