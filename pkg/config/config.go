package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sakashimaa/storefront/pkg/utils"
)

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP     `yaml:"http"`
	API      API      `yaml:"api"`
	Tokens   Tokens   `yaml:"tokens"`
	Cache    Cache    `yaml:"cache"`
	Kafka    Kafka    `yaml:"kafka"`
	Checkout Checkout `yaml:"checkout"`
	Limiter  Limiter  `yaml:"limiter"`
	Log      Log      `yaml:"log"`
	Tracing  Tracing  `yaml:"tracing"`
	Metrics  Metrics  `yaml:"metrics"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

// API points the client at the storefront REST backend.
type API struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8000/api/v1"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
}

// Tokens selects where the access/refresh tokens are persisted.
type Tokens struct {
	Driver    string `yaml:"driver" env:"TOKENS_DRIVER" env-default:"file"`
	FilePath  string `yaml:"file_path" env:"TOKENS_FILE" env-default:"./.storefront/session.json"`
	RedisAddr string `yaml:"redis_addr" env:"TOKENS_REDIS_ADDR" env-default:"localhost:6379"`
	Prefix    string `yaml:"prefix" env:"TOKENS_PREFIX" env-default:"storefront:default"`
}

type Cache struct {
	Enabled bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"false"`
	Addr    string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	TTL     time.Duration `yaml:"ttl" env-default:"10m"`
}

// Kafka is optional: with no brokers domain events are dropped.
type Kafka struct {
	Brokers       []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic         string        `yaml:"topic" env:"KAFKA_TOPIC" env-default:"storefront_events"`
	OutboxSize    int           `yaml:"outbox_size" env-default:"1000"`
	MaxAttempts   int           `yaml:"max_attempts" env-default:"10"`
	FlushInterval time.Duration `yaml:"flush_interval" env-default:"500ms"`
}

type Checkout struct {
	TaxRate  float64            `yaml:"tax_rate" env:"CHECKOUT_TAX_RATE" env-default:"0.08"`
	Shipping map[string]float64 `yaml:"shipping"`
}

type Limiter struct {
	Max        int           `yaml:"max" env-default:"20"`
	Expiration time.Duration `yaml:"expiration" env-default:"5s"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	Endpoint    string  `yaml:"endpoint" env:"JAEGER_ENDPOINT" env-default:"localhost:4318"`
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACING_SAMPLE_RATIO" env-default:"1"`
}

// Metrics serves the prometheus registry on its own listener, away from the shell routes.
type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Port    string `yaml:"port" env:"METRICS_PORT" env-default:":9091"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
