package response

import (
	"roomstay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AvailableRoomResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	NightlyRate int64     `json:"nightlyRate"`
	Amenities   []string  `json:"amenities,omitempty"`
}

func FromAvailableRooms(items []*queries.AvailableRoomItem) ([]*AvailableRoomResponse, error) {
	result := make([]*AvailableRoomResponse, len(items))
	for i, item := range items {
		var resp AvailableRoomResponse
		if err := copier.Copy(&resp, item); err != nil {
			return nil, err
		}
		result[i] = &resp
	}
	return result, nil
}
