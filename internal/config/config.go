package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Chain    ChainConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       string `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"wager_ledger"`
	SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"wager.db"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env            string `envconfig:"APP_ENV" default:"development"`
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	RecordDeposit  uint64 `envconfig:"RECORD_DEPOSIT" default:"0"`
	ReaperSchedule string `envconfig:"REAPER_SCHEDULE" default:"@every 10m"`
}

// ChainConfig holds the program and RPC endpoint used for address derivation
// and on-chain reads
type ChainConfig struct {
	ProgramID string `envconfig:"PROGRAM_ID" default:"8a6kHAGhMgMEJnhDEafuZf1JYc4a9rdWySJNQ311UhHD"`
	RPCURL    string `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers   []string `envconfig:"KAFKA_BROKERS"`
	TopicBets string   `envconfig:"KAFKA_TOPIC_BETS" default:"wager.bets"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if strings.TrimSpace(cfg.App.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.App.ReaperSchedule) == "" {
		return nil, fmt.Errorf("REAPER_SCHEDULE must not be empty")
	}

	return &cfg, nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// IsProduction reports whether APP_ENV names a production deployment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "prod"
}

// KafkaEnabled reports whether lifecycle events should be published
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Brokers[0] != ""
}
