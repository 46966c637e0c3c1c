package components

import (
	"roomstay/internal/infra/db"
	"roomstay/internal/infra/readstore"
	repo_impl "roomstay/internal/infra/repository"
	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/queries"
	"roomstay/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			shared.NewPgxTxRunner,
			fx.As(new(shared.TxRunner)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingRepo)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(queries.SnapshotsByPropertyLoader)),
		),
		fx.Annotate(
			repo_impl.NewRoomRepository,
			fx.As(new(commands.RoomRepo)),
		),
		fx.Annotate(
			repo_impl.NewRoomRepository,
			fx.As(new(queries.RoomLister)),
		),
		fx.Annotate(
			repo_impl.NewPaymentRepository,
			fx.As(new(commands.PaymentRepo)),
		),
		// Read-side store for queries
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
