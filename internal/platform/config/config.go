package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr               string        `envconfig:"APP_ADDR" default:":8080"`
	Environment        string        `envconfig:"APP_ENV" default:"development"`
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	RedisAddr          string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	JWTSecret          string        `envconfig:"JWT_SECRET"`
	RunMigrations      bool          `envconfig:"RUN_MIGRATIONS" default:"true"`
	RunSeed            bool          `envconfig:"RUN_SEED" default:"true"`
	MigrationsDir      string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	MaxBodyBytes       int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	CORSOrigins        []string      `envconfig:"CORS_ORIGINS" default:"*"`
	AccrualCron        string        `envconfig:"ACCRUAL_CRON" default:"0 2 * * *"`
	YearEndCron        string        `envconfig:"YEAR_END_CRON" default:"0 3 1 1 *"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MetricsEnabled     bool          `envconfig:"METRICS_ENABLED" default:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
