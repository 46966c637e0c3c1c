package api

import (
	"context"
	"errors"
	"net/http"

	"roomstay/internal/domain/booking"
	reqdto "roomstay/internal/handler/dto/request"
	resdto "roomstay/internal/handler/dto/response"
	"roomstay/internal/handler/middleware"
	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/queries"
	"roomstay/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	commands commands.BookingCommands
	queries  queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, qs queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		commands: cmds,
		queries:  qs,
	}
}

// @Summary Create reservation
// @Description Create a new DRAFT reservation for a room and date range
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.CreateReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations [post]
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.commands.CreateReservation(c.Request.Context(), viewer, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Room not found",
			})
		case errors.Is(err, commands.ErrDatesUnavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Room is not available for the requested dates",
			})
		case errors.Is(err, commands.ErrTransactionTimeout):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Booking system busy, please retry",
			})
		case errors.Is(err, booking.ErrInvalidStayRange),
			errors.Is(err, booking.ErrCheckInPast),
			errors.Is(err, booking.ErrCapacityExceeded),
			errors.Is(err, booking.ErrRoomUnavailable),
			errors.Is(err, booking.ErrNonPositiveGuestCount),
			errors.Is(err, booking.ErrNoGuests),
			errors.Is(err, booking.ErrMissingPrimaryGuest),
			errors.Is(err, booking.ErrGuestCountMismatch),
			errors.Is(err, booking.ErrEmptyGuestName):
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

	c.JSON(http.StatusCreated, resdto.CreateReservationResponse{ID: id})
}

// @Summary Get reservation
// @Description Get reservation by ID, shaped for the viewer's role
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *BookingHandler) GetReservation(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrReservationNotFound),
			errors.Is(err, queries.ErrForbidden):
			// Forbidden surfaces as 404 so ids cannot be probed
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	resp, err := resdto.FromReservationView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List reservations
// @Description List reservations for the current viewer (own bookings for guests, property bookings for vendors)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ReservationListResponse
// @Failure 401 {object} map[string]string
// @Router /reservations [get]
func (h *BookingHandler) ListReservations(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	items, err := h.queries.ListForViewer(c.Request.Context(), viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ReservationListResponse, len(items))
	for i, item := range items {
		resp, err := resdto.FromReservationListItem(item)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		response[i] = resp
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Cancel reservation
// @Description Cancel a reservation; captured payments are refunded asynchronously
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CancelReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *BookingHandler) CancelReservation(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	refundInitiated, err := h.commands.Cancel(c.Request.Context(), viewer, id)
	if err != nil {
		respondTransitionErr(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.CancelReservationResponse{
		Status:          "cancelled",
		RefundInitiated: refundInitiated,
	})
}

// @Summary Complete reservation
// @Description Mark a confirmed reservation's stay as finished
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/complete [post]
func (h *BookingHandler) CompleteReservation(c *gin.Context) {
	h.transition(c, h.commands.Complete)
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	if err := op(c.Request.Context(), viewer, id); err != nil {
		respondTransitionErr(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTransitionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
	case errors.Is(err, commands.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Insufficient permissions",
		})
	case errors.Is(err, commands.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Reservation state does not allow this operation",
		})
	case errors.Is(err, commands.ErrTransactionTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Booking system busy, please retry",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
