package bootstrap

import (
	"roomstay/internal/pkg/config"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		LoadConfig,
	),
)

// LoadConfig reads an optional .env first so local development works without
// exporting every variable. Missing .env is not an error; production sets the
// environment directly.
func LoadConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.LoadConfig()
}
