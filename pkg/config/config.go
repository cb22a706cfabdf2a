package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Logging     LoggingConfig    `yaml:"logging"`
	Storage     StorageConfig    `yaml:"storage"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Chain       ChainConfig      `yaml:"chain"`
	RateLimit   RateLimitConfig  `yaml:"ratelimit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	SlowRequest     time.Duration `yaml:"slow_request" default:"500ms"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

type LoggingConfig struct {
	Level     string          `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format    string          `yaml:"format" default:"json" validate:"oneof=json console"`
	Output    string          `yaml:"output" default:"stdout"`
	Collector CollectorConfig `yaml:"collector"`
}

// CollectorConfig ships aggregated error logs through the Kafka producer.
type CollectorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Topic           string        `yaml:"topic" default:"demandcast.logs"`
	Interval        time.Duration `yaml:"interval" default:"30s"`
	Threshold       int           `yaml:"threshold" default:"100" validate:"min=1"`
	IncludeWarnings bool          `yaml:"include_warnings"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
	Memory  struct {
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
	} `yaml:"memory"`
	Redis struct {
		Addr         string        `yaml:"addr" default:"localhost:6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db" validate:"min=0"`
		Prefix       string        `yaml:"prefix" default:"demandcast"`
		PoolSize     int           `yaml:"pool_size" default:"20"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"4s"`
	} `yaml:"redis"`
	Layered struct {
		MemoryMaxSize int           `yaml:"memory_max_size" default:"10000"`
		MemoryTTL     time.Duration `yaml:"memory_ttl" default:"30s"`
	} `yaml:"layered"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"demandcast.contract-events"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	// ReplayOnStart rebuilds state from the event topic before serving.
	ReplayOnStart bool `yaml:"replay_on_start"`
	Producer      struct {
		MaxAttempts     int           `yaml:"max_attempts" default:"5"`
		Linger          time.Duration `yaml:"linger" default:"10ms"`
		BatchBytes      int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize       int           `yaml:"batch_size" default:"100"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		Async           bool          `yaml:"async"`
		AutoCreateTopic bool          `yaml:"auto_create_topic"`
		RetryBuffer     int           `yaml:"retry_buffer" default:"1000" validate:"min=1"`
		MaxRetryBackoff time.Duration `yaml:"max_retry_backoff" default:"5s"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"default"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert" default:"true"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert" default:"true"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	InitSchema       bool          `yaml:"init_schema" default:"true"`
}

// ChainConfig seeds the block-height clock that stamps forecasts.
type ChainConfig struct {
	GenesisHeight uint64 `yaml:"genesis_height"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     float64 `yaml:"capacity" default:"20" validate:"gt=0"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"5" validate:"gt=0"`
}

// Load reads a YAML file on top of the default values and validates it.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv is Load with environment variable overrides applied before
// validation.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path == "" {
		return &c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("APP_ENV"); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("STORAGE_BACKEND"); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Storage.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v, ok := lookup("KAFKA_TOPIC"); ok && v != "" {
		c.Kafka.Topic = v
	}
	if v, ok := lookup("CLICKHOUSE_HOST"); ok && v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v, ok := lookup("CLICKHOUSE_PASSWORD"); ok {
		c.ClickHouse.Password = v
	}
	if v, ok := lookup("GENESIS_HEIGHT"); ok && v != "" {
		h, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GENESIS_HEIGHT: %w", err)
		}
		c.Chain.GenesisHeight = h
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field constraints and cross-section requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.ReplayOnStart && !c.Kafka.Enabled {
		return fmt.Errorf("kafka.replay_on_start requires kafka to be enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka to be enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
