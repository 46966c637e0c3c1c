package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"roomstay/internal/pkg/config"
	"roomstay/internal/pkg/errs"
)

// maxReceiptLen is the gateway's cap on the idempotent receipt field.
const maxReceiptLen = 40

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type RefundRequest struct {
	PaymentRef  string
	AmountMinor int64
}

// Client is the payment gateway surface the orchestrator needs: open an
// order sized to a reservation, and refund a captured payment. Signature
// verification is local crypto and lives in the payment domain, not here.
type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
	Refund(ctx context.Context, req RefundRequest) (string, error)
}

type HTTPClient struct {
	cfg    config.GatewayConfig
	client *http.Client
}

func NewHTTPClient(cfg config.GatewayConfig) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type refundPayload struct {
	Amount int64 `json:"amount"`
}

type gatewayResponse struct {
	ID string `json:"id"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	receipt := req.Receipt
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}

	payload := orderPayload{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  receipt,
		Notes:    req.Notes,
	}

	return c.post(ctx, c.cfg.BaseURL+"/v1/orders", payload)
}

func (c *HTTPClient) Refund(ctx context.Context, req RefundRequest) (string, error) {
	url := fmt.Sprintf("%s/v1/payments/%s/refund", c.cfg.BaseURL, req.PaymentRef)
	return c.post(ctx, url, refundPayload{Amount: req.AmountMinor})
}

func (c *HTTPClient) post(ctx context.Context, url string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errs.Wrap(err, "failed to encode gateway request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(err, "failed to build gateway request")
	}
	httpReq.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errs.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.New(fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errs.Wrap(err, "failed to decode gateway response")
	}
	if decoded.ID == "" {
		return "", errs.New("gateway response missing id")
	}

	return decoded.ID, nil
}
