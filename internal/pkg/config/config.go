package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, thresholds), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Gateway GatewayConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// GatewayConfig holds the payment gateway credentials. KeySecret signs
// checkout callbacks, WebhookSecret signs server-to-server webhook bodies.
type GatewayConfig struct {
	BaseURL        string        `envconfig:"GATEWAY_BASE_URL" default:"https://api.gateway.example"`
	KeyID          string        `envconfig:"GATEWAY_KEY_ID" required:"true"`
	KeySecret      string        `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
	WebhookSecret  string        `envconfig:"GATEWAY_WEBHOOK_SECRET" required:"true"`
	Currency       string        `envconfig:"GATEWAY_CURRENCY" default:"INR"`
	RequestTimeout time.Duration `envconfig:"GATEWAY_REQUEST_TIMEOUT" default:"15s"`
}

// BookingConfig tunes the reservation lifecycle engine. The pending grace
// window and draft TTL are deliberately NOT configurable: blocking and
// reaping must share one threshold, so both are constants in the booking
// domain package.
type BookingConfig struct {
	VendorPendingFilter time.Duration `envconfig:"BOOKING_VENDOR_PENDING_FILTER" default:"10m"`
	CommissionPercent   string        `envconfig:"BOOKING_COMMISSION_PERCENT" default:"12"`
	SweepSchedule       string        `envconfig:"BOOKING_SWEEP_SCHEDULE" default:"*/15 * * * *"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:          "error",
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Gateway: GatewayConfig{
			BaseURL:        "http://localhost:9999",
			KeyID:          "test_key",
			KeySecret:      "test_secret",
			WebhookSecret:  "test_webhook_secret",
			Currency:       "INR",
			RequestTimeout: time.Second,
		},
		Booking: BookingConfig{
			VendorPendingFilter: 10 * time.Minute,
			CommissionPercent:   "12",
			SweepSchedule:       "*/15 * * * *",
		},
	}
}
