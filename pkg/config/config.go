package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"StockCast/pkg/logger"
)

const envPrefix = "STOCKCAST_"

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Server      Server        `yaml:"server"`
	Logger      logger.Config `yaml:"logger"`
	Metrics     Metrics       `yaml:"metrics"`
	Engine      Engine        `yaml:"engine"`
	Provider    Provider      `yaml:"provider"`
	Cache       Cache         `yaml:"cache"`
	ClickHouse  ClickHouse    `yaml:"clickhouse"`
	Kafka       Kafka         `yaml:"kafka"`
}

type Server struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// Engine bounds the numeric core.
type Engine struct {
	HistogramBins int           `yaml:"histogram_bins" default:"40"`
	Workers       int           `yaml:"workers"` // 0 means GOMAXPROCS
	ChunkSize     int           `yaml:"chunk_size" default:"256"`
	VaRLevels     []float64     `yaml:"var_levels"`
	RunTimeout    time.Duration `yaml:"run_timeout" default:"30s"`
}

type Provider struct {
	BaseURL    string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	UserAgent  string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; StockCast/1.0)"`
	Timeout    time.Duration `yaml:"timeout" default:"10s"`
	Retries    int           `yaml:"retries" default:"2"`
	RatePerSec int           `yaml:"rate_per_sec" default:"5"`
}

type Cache struct {
	MemorySize int           `yaml:"memory_size" default:"512"`
	TTL        time.Duration `yaml:"ttl" default:"15m"`
	Redis      Redis         `yaml:"redis"`
}

type Redis struct {
	Enabled      bool   `yaml:"enabled"`
	Addr         string `yaml:"addr" default:"localhost:6379"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	Prefix       string `yaml:"prefix" default:"stockcast"`
	PoolSize     int    `yaml:"pool_size" default:"10"`
	MinIdleConns int    `yaml:"min_idle_conns" default:"2"`
}

type ClickHouse struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"stockcast"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	Table        string        `yaml:"table" default:"bars"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
}

type Kafka struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic" default:"stockcast.runs"`
	JobsTopic   string   `yaml:"jobs_topic" default:"stockcast.simulation-jobs"`
	GroupID     string   `yaml:"group_id" default:"stockcast-workers"`
	Workers     int      `yaml:"workers" default:"4"`
	RetryMax    int      `yaml:"retry_max" default:"3"`
	DLQTopic    string   `yaml:"dlq_topic"`
}

// Default returns a configuration holding only defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML file on top of the defaults. An empty path yields defaults only.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with STOCKCAST_* variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
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

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return v, ok && v != ""
	}
	if v, ok := get("ENV"); ok {
		c.Environment = v
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		c.Server.Port = port
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logger.Level = v
	}
	if v, ok := get("YAHOO_BASE_URL"); ok {
		c.Provider.BaseURL = v
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v, ok := get("CLICKHOUSE_HOST"); ok {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v, ok := get("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Engine.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("engine.chunk_size must be positive, got %d", c.Engine.ChunkSize))
	}
	if c.Engine.HistogramBins < 1 {
		errs = append(errs, fmt.Errorf("engine.histogram_bins must be positive"))
	}
	for _, lvl := range c.Engine.VaRLevels {
		if !(lvl > 0 && lvl < 100) {
			errs = append(errs, fmt.Errorf("engine.var_levels: %v outside (0, 100)", lvl))
		}
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, fmt.Errorf("provider.base_url is required"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled"))
	}
	if r := c.Cache.Redis; r.Enabled && (r.PoolSize < 1 || r.MinIdleConns < 0 || r.MinIdleConns > r.PoolSize) {
		errs = append(errs, fmt.Errorf("cache.redis pool: need 0 <= min_idle_conns <= pool_size and pool_size >= 1, got %d/%d", r.MinIdleConns, r.PoolSize))
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Table == "" {
		errs = append(errs, fmt.Errorf("clickhouse.table is required when clickhouse is enabled"))
	}
	return errors.Join(errs...)
}
