package components

import (
	"roomstay/internal/handler"
	"roomstay/internal/handler/api"
	"roomstay/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewPaymentHandler,
		api.NewRoomHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
