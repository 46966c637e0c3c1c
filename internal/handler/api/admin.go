package api

import (
	"net/http"

	"roomstay/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reaper commands.ReaperCommands
}

func NewAdminHandler(reaper commands.ReaperCommands) *AdminHandler {
	return &AdminHandler{reaper: reaper}
}

// @Summary Sweep abandoned reservations
// @Description Delete expired DRAFT reservations and stale unpaid PENDING reservations
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/reservations/sweep [post]
func (h *AdminHandler) SweepReservations(c *gin.Context) {
	result, err := h.reaper.SweepAbandoned(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"draft_removed":   result.DraftRemoved,
		"pending_removed": result.PendingRemoved,
	})
}
