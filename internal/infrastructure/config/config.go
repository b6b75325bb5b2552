package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET" validate:"required,min=16"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10" validate:"gte=4,lte=31"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ThrottleConfig bounds failed login attempts per username. Disabled turns
// the throttle off entirely (no Redis round-trips on login).
type ThrottleConfig struct {
	Disabled    bool          `env:"LOGIN_THROTTLE_DISABLED, default=false"`
	MaxFailures int           `env:"LOGIN_MAX_FAILURES,      default=5" validate:"gte=1"`
	Window      time.Duration `env:"LOGIN_FAILURE_WINDOW,    default=15m"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates the result. A missing or weak JWT secret is a startup failure,
// not something to discover on the first login.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}
