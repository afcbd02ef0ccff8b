package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// FreeIssueLimit is the number of issues a non-premium reporter may hold.
	FreeIssueLimit int64 `env:"FREE_ISSUE_LIMIT, default=3"`
	// AuditWorkers is the number of sharded audit-event workers.
	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=civicdesk"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type CheckoutConfig struct {
	BaseURL    string `env:"CHECKOUT_BASE_URL"`
	APIKey     string `env:"CHECKOUT_API_KEY"`
	Currency   string `env:"CHECKOUT_CURRENCY,    default=usd"`
	SuccessURL string `env:"CHECKOUT_SUCCESS_URL, default=http://localhost:3000/payment/success"`
	CancelURL  string `env:"CHECKOUT_CANCEL_URL,  default=http://localhost:3000/payment/cancel"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
