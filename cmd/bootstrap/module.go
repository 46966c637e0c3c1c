package bootstrap

import (
	"roomstay/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	CronModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
