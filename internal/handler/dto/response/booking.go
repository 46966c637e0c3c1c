package response

import (
	"time"

	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type GuestResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type PaymentResponse struct {
	Status          string     `json:"status"`
	GatewayOrderRef string     `json:"gatewayOrderRef,omitempty"`
	TotalAmount     int64      `json:"totalAmount"`
	RefundAmount    *int64     `json:"refundAmount,omitempty"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
}

type ReservationResponse struct {
	ID           uuid.UUID        `json:"id"`
	OrderID      uuid.UUID        `json:"orderId"`
	RoomID       uuid.UUID        `json:"roomId"`
	RoomName     string           `json:"roomName"`
	PropertyName string           `json:"propertyName"`
	CheckIn      time.Time        `json:"checkIn"`
	CheckOut     time.Time        `json:"checkOut"`
	Status       string           `json:"status"`
	GuestCount   int              `json:"guestCount"`
	TotalAmount  int64            `json:"totalAmount"`
	Note         *string          `json:"note,omitempty"`
	Guests       []GuestResponse  `json:"guests,omitempty"`
	Payment      *PaymentResponse `json:"payment,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type ReservationListResponse struct {
	ID           uuid.UUID `json:"id"`
	RoomID       uuid.UUID `json:"roomId"`
	RoomName     string    `json:"roomName"`
	PropertyName string    `json:"propertyName"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
	Status       string    `json:"status"`
	GuestCount   int       `json:"guestCount"`
	TotalAmount  int64     `json:"totalAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateReservationResponse struct {
	ID uuid.UUID `json:"id"`
}

type CancelReservationResponse struct {
	Status          string `json:"status"`
	RefundInitiated bool   `json:"refundInitiated"`
}

type InitiatePaymentResponse struct {
	ReservationID   uuid.UUID `json:"reservationId"`
	GatewayOrderRef string    `json:"gatewayOrderRef"`
	AmountMinor     int64     `json:"amountMinor"`
	Currency        string    `json:"currency"`
}

func FromReservationView(view *queries.ReservationView) (*ReservationResponse, error) {
	var resp ReservationResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromReservationListItem(item *queries.ReservationListItem) (*ReservationListResponse, error) {
	var resp ReservationListResponse
	if err := copier.Copy(&resp, item); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromInitiatePaymentResult(result *commands.InitiatePaymentResult) *InitiatePaymentResponse {
	return &InitiatePaymentResponse{
		ReservationID:   result.ReservationID,
		GatewayOrderRef: result.GatewayOrderRef,
		AmountMinor:     result.AmountMinor,
		Currency:        result.Currency,
	}
}
