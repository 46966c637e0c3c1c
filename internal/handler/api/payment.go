package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "roomstay/internal/handler/dto/request"
	resdto "roomstay/internal/handler/dto/response"
	"roomstay/internal/handler/middleware"
	"roomstay/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// webhookSignatureHeader carries the gateway's HMAC over the raw body.
const webhookSignatureHeader = "X-Gateway-Signature"

type PaymentHandler struct {
	bookings commands.BookingCommands
	payments commands.PaymentCommands
}

func NewPaymentHandler(bookings commands.BookingCommands, payments commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{
		bookings: bookings,
		payments: payments,
	}
}

// @Summary Initiate payment
// @Description Move a reservation to PENDING and open a gateway order for it
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.InitiatePaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /reservations/{id}/payment [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
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

	result, err := h.bookings.InitiatePayment(c.Request.Context(), viewer, id)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errors.Is(err, commands.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
		case errors.Is(err, commands.ErrDatesUnavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Room is no longer available for the reserved dates",
			})
		case errors.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Reservation state does not allow payment",
			})
		case errors.Is(err, commands.ErrPaymentGateway):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment gateway unavailable",
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
		return
	}

	c.JSON(http.StatusOK, resdto.FromInitiatePaymentResult(result))
}

// @Summary Verify payment
// @Description Verify the gateway checkout callback signature and confirm the reservation
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.VerifyPaymentRequest true "Gateway callback payload"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/payment/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
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

	var req reqdto.VerifyPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err = h.payments.VerifyCallback(c.Request.Context(), viewer, commands.VerifyCallbackInput{
		ReservationID:     id,
		GatewayOrderRef:   req.GatewayOrderRef,
		GatewayPaymentRef: req.GatewayPaymentRef,
		Signature:         req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound),
			errors.Is(err, commands.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation or payment not found",
			})
		case errors.Is(err, commands.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
		case errors.Is(err, commands.ErrOrderRefMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Order reference does not match this reservation",
			})
		case errors.Is(err, commands.ErrSignatureInvalid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Payment signature verification failed",
			})
		case errors.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Reservation state does not allow confirmation",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Payment webhook
// @Description Gateway server-to-server notification; authenticated by body HMAC, not JWT
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Gateway-Signature header string true "HMAC-SHA256 of the raw body"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /webhooks/payment [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Missing webhook signature",
		})
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, commands.ErrWebhookUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid webhook signature",
			})
		case errors.Is(err, commands.ErrPaymentNotFound),
			errors.Is(err, commands.ErrReservationNotFound),
			errors.Is(err, commands.ErrInvalidState):
			// 204 so the gateway stops retrying: the reservation is gone,
			// or in a state that can never confirm, and no retry changes that
			c.Status(http.StatusNoContent)
		case errors.Is(err, commands.ErrUnknownWebhookEvent):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unrecognized webhook event",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Refund payment
// @Description Refund a captured payment, full amount unless specified
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.RefundPaymentRequest false "Refund options"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /reservations/{id}/payment/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
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

	var req reqdto.RefundPaymentRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	err = h.payments.Refund(c.Request.Context(), viewer, commands.RefundInput{
		ReservationID: id,
		AmountMinor:   req.AmountMinor,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound),
			errors.Is(err, commands.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation or payment not found",
			})
		case errors.Is(err, commands.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
		case errors.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Payment is not refundable",
			})
		case errors.Is(err, commands.ErrPaymentGateway):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment gateway unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
