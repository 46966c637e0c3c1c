//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/queries"
	"roomstay/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Stub usecases with overridable function fields. A nil field means the call
// succeeds with zero values.
type stubBookingCommands struct {
	createFn   func(ctx context.Context, viewer shared.Viewer, input commands.CreateReservationInput) (uuid.UUID, error)
	initiateFn func(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*commands.InitiatePaymentResult, error)
	cancelFn   func(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (bool, error)
	completeFn func(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error
}

func (s *stubBookingCommands) CreateReservation(ctx context.Context, viewer shared.Viewer, input commands.CreateReservationInput) (uuid.UUID, error) {
	if s.createFn != nil {
		return s.createFn(ctx, viewer, input)
	}
	return uuid.New(), nil
}

func (s *stubBookingCommands) InitiatePayment(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*commands.InitiatePaymentResult, error) {
	if s.initiateFn != nil {
		return s.initiateFn(ctx, viewer, id)
	}
	return &commands.InitiatePaymentResult{ReservationID: id}, nil
}

func (s *stubBookingCommands) Cancel(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (bool, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, viewer, id)
	}
	return false, nil
}

func (s *stubBookingCommands) Complete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	if s.completeFn != nil {
		return s.completeFn(ctx, viewer, id)
	}
	return nil
}

type stubPaymentCommands struct {
	verifyFn  func(ctx context.Context, viewer shared.Viewer, input commands.VerifyCallbackInput) error
	webhookFn func(ctx context.Context, body []byte, signature string) error
	refundFn  func(ctx context.Context, viewer shared.Viewer, input commands.RefundInput) error
}

func (s *stubPaymentCommands) VerifyCallback(ctx context.Context, viewer shared.Viewer, input commands.VerifyCallbackInput) error {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, viewer, input)
	}
	return nil
}

func (s *stubPaymentCommands) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.webhookFn != nil {
		return s.webhookFn(ctx, body, signature)
	}
	return nil
}

func (s *stubPaymentCommands) Refund(ctx context.Context, viewer shared.Viewer, input commands.RefundInput) error {
	if s.refundFn != nil {
		return s.refundFn(ctx, viewer, input)
	}
	return nil
}

type stubBookingQueries struct {
	getFn   func(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*queries.ReservationView, error)
	listFn  func(ctx context.Context, viewer shared.Viewer) ([]*queries.ReservationListItem, error)
	availFn func(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*queries.AvailableRoomItem, error)
}

func (s *stubBookingQueries) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*queries.ReservationView, error) {
	if s.getFn != nil {
		return s.getFn(ctx, viewer, id)
	}
	return &queries.ReservationView{ID: id}, nil
}

func (s *stubBookingQueries) ListForViewer(ctx context.Context, viewer shared.Viewer) ([]*queries.ReservationListItem, error) {
	if s.listFn != nil {
		return s.listFn(ctx, viewer)
	}
	return nil, nil
}

func (s *stubBookingQueries) AvailableRooms(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*queries.AvailableRoomItem, error) {
	if s.availFn != nil {
		return s.availFn(ctx, propertyID, checkIn, checkOut)
	}
	return nil, nil
}

var (
	_ commands.BookingCommands = (*stubBookingCommands)(nil)
	_ commands.PaymentCommands = (*stubPaymentCommands)(nil)
	_ queries.BookingQueries   = (*stubBookingQueries)(nil)
)

// authAs replaces the JWT middleware in tests, injecting the viewer directly.
func authAs(viewer shared.Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("viewer", viewer)
		c.Next()
	}
}

func performJSON(t *testing.T, router http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
