package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN,required=true"`
	RedisURL            string `env:"REDIS_URL,required=true"`
	SendTimeoutSeconds  int    `env:"SEND_TIMEOUT_SECONDS,default=15"`
	ProbeTimeoutSeconds int    `env:"PROBE_TIMEOUT_SECONDS,default=5"`
	SendConcurrency     int    `env:"SEND_CONCURRENCY,default=4"`
	APIPort             int    `env:"API_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
