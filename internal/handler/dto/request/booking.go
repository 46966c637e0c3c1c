package request

import (
	"strings"
	"time"

	"roomstay/internal/usecase/commands"

	"github.com/google/uuid"
)

type GuestRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type CreateReservationRequest struct {
	RoomID     uuid.UUID      `json:"room_id" binding:"required"`
	CheckIn    time.Time      `json:"check_in" binding:"required"`
	CheckOut   time.Time      `json:"check_out" binding:"required"`
	GuestCount int            `json:"guest_count" binding:"required"`
	Guests     []GuestRequest `json:"guests" binding:"required,dive"`
	Note       *string        `json:"note,omitempty"`
}

func (r CreateReservationRequest) ToInput() commands.CreateReservationInput {
	guests := make([]commands.GuestInput, len(r.Guests))
	for i, g := range r.Guests {
		guests[i] = commands.GuestInput{
			Name:      strings.TrimSpace(g.Name),
			Email:     strings.TrimSpace(g.Email),
			Phone:     strings.TrimSpace(g.Phone),
			IsPrimary: g.IsPrimary,
		}
	}

	note := ""
	if r.Note != nil {
		note = strings.TrimSpace(*r.Note)
	}

	return commands.CreateReservationInput{
		RoomID:     r.RoomID,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		GuestCount: r.GuestCount,
		Guests:     guests,
		Note:       note,
	}
}
