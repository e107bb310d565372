package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, after an optional .env file
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required,hostname_port"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	DirectoryTTL  time.Duration `envconfig:"DIRECTORY_TTL" default:"2h" validate:"gt=0"`
	RepoTimeout   time.Duration `envconfig:"REPO_TIMEOUT" default:"2s" validate:"gt=0"`

	DefaultRoom       string          `envconfig:"DEFAULT_ROOM" default:"main" validate:"required,max=64,printascii"`
	Capacity          int             `envconfig:"ROOM_CAPACITY" default:"20" validate:"min=1,max=1000"`
	SectionCap        int             `envconfig:"SECTION_CAP" default:"3" validate:"min=2"`
	EvictionThreshold int             `envconfig:"EVICTION_THRESHOLD" default:"4" validate:"min=1"`
	RoundStarts       []time.Duration `envconfig:"ROUND_STARTS" default:"20m,40m,60m" validate:"len=3,dive,gt=0"`
	RoundLength       time.Duration   `envconfig:"ROUND_LENGTH" default:"60s" validate:"gt=0"`
	SettleDelay       time.Duration   `envconfig:"SETTLE_DELAY" default:"1s" validate:"gte=0"`
	IdleTimeout       time.Duration   `envconfig:"IDLE_TIMEOUT" default:"5m" validate:"gt=0"`
	InvitationTTL     time.Duration   `envconfig:"INVITATION_TTL" default:"0s" validate:"gte=0"`
	QueueWhenFull     bool            `envconfig:"QUEUE_WHEN_FULL" default:"false"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
