package api

import (
	"errors"
	"net/http"
	"time"

	"roomstay/internal/domain/booking"
	resdto "roomstay/internal/handler/dto/response"
	"roomstay/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type RoomHandler struct {
	queries queries.BookingQueries
}

func NewRoomHandler(qs queries.BookingQueries) *RoomHandler {
	return &RoomHandler{queries: qs}
}

// @Summary Search available rooms
// @Description List a property's rooms free for a date range under the blocking rule
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param propertyId path string true "Property ID"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {array} resdto.AvailableRoomResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /rooms/{propertyId}/available [get]
func (h *RoomHandler) AvailableRooms(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid property ID format",
		})
		return
	}

	checkIn, err := time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid check_in date, expected YYYY-MM-DD",
		})
		return
	}
	checkOut, err := time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid check_out date, expected YYYY-MM-DD",
		})
		return
	}

	items, err := h.queries.AvailableRooms(c.Request.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidStayRange),
			errors.Is(err, booking.ErrCheckInPast):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	response, err := resdto.FromAvailableRooms(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, response)
}
