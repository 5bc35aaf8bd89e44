// Package config loads process configuration from the environment, after
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Log struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC"   envDefault:"game-events"`
	GroupID string   `env:"KAFKA_GROUP"   envDefault:"analytics-consumer"`
}

type Server struct {
	// PORT wins over ADDR; hosting platforms set PORT.
	Port          string        `env:"PORT"`
	Addr          string        `env:"ADDR"           envDefault:":8080"`
	IdleTimeout   time.Duration `env:"IDLE_TIMEOUT"   envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	Kafka         Kafka
	Log           Log
}

func (s Server) ListenAddr() string {
	if s.Port != "" {
		return ":" + s.Port
	}
	return s.Addr
}

type Analytics struct {
	SummaryInterval time.Duration `env:"SUMMARY_INTERVAL" envDefault:"30s"`
	Kafka           Kafka
	Log             Log
}

// LoadDotEnv reads the given files (".env" when none) into the process
// environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SweepInterval <= 0 {
		return Server{}, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return cfg, nil
}

func LoadAnalytics() (Analytics, error) {
	var cfg Analytics
	if err := env.Parse(&cfg); err != nil {
		return Analytics{}, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.SummaryInterval <= 0 {
		return Analytics{}, fmt.Errorf("SUMMARY_INTERVAL must be positive, got %s", cfg.SummaryInterval)
	}
	return cfg, nil
}
