package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"roomstay/internal/domain/user"
	"roomstay/internal/handler/api"
	"roomstay/internal/handler/middleware"
	"roomstay/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	roomHandler *api.RoomHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, paymentHandler, roomHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	roomHandler *api.RoomHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Webhook authenticates by body HMAC, not JWT, so it sits outside /api
	engine.POST("/webhooks/payment", paymentHandler.Webhook)

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateReservation},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetReservation},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.CancelReservation},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: bookingHandler.CompleteReservation},
				{Method: http.MethodPost, Path: "/:id/payment", Handler: paymentHandler.InitiatePayment},
				{Method: http.MethodPost, Path: "/:id/payment/verify", Handler: paymentHandler.VerifyPayment},
				{Method: http.MethodPost, Path: "/:id/payment/refund", Handler: paymentHandler.RefundPayment,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleAdmin)}},
			})
		}

		rooms := apiGroup.Group("/rooms")
		{
			addRoutes(rooms, []route{
				{Method: http.MethodGet, Path: "/:propertyId/available", Handler: roomHandler.AvailableRooms},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/reservations/sweep", Handler: adminHandler.SweepReservations},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
