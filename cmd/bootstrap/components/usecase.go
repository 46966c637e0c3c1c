package components

import (
	"roomstay/internal/infra/gateway"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/pkg/config"
	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) gateway.Client {
		return gateway.NewHTTPClient(cfg.Gateway)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewPaymentCommands,
		commands.NewReaperCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(
			views queries.BookingViewRepo,
			rooms queries.RoomLister,
			snapshots queries.SnapshotsByPropertyLoader,
			clk clock.Clock,
			cfg config.Config,
		) queries.BookingQueries {
			return queries.NewBookingQueries(views, rooms, snapshots, clk, cfg.Booking.VendorPendingFilter)
		},
	),
)
