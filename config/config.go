package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Renderer modes.
const (
	RendererOverlay   = "overlay"
	RendererSynthetic = "synthetic"
	RendererRemote    = "remote"
)

// Counter backends.
const (
	CounterFile     = "file"
	CounterRedis    = "redis"
	CounterPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Renderer  RendererConfig  `mapstructure:"renderer"`
	Counter   CounterConfig   `mapstructure:"counter"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// RendererConfig selects the receipt renderer and its calibration data.
type RendererConfig struct {
	Mode         string `mapstructure:"mode"`          // overlay, synthetic, remote
	TemplatePath string `mapstructure:"template_path"` // background image (overlay mode)
	LayoutFile   string `mapstructure:"layout_file"`   // optional YAML anchor table
}

// CounterConfig selects where the receipt sequence number is persisted.
type CounterConfig struct {
	Backend string `mapstructure:"backend"` // file, redis, postgres
	Path    string `mapstructure:"path"`    // file backend
	Key     string `mapstructure:"key"`     // redis key / postgres counter name
	Width   int    `mapstructure:"width"`   // zero-padding of generated ids
}

// RemoteConfig points at another instance's generation endpoint.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RateLimitConfig bounds receipt generation per client IP. Needs Redis.
type RateLimitConfig struct {
	Limit  int64         `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// UsesCounter reports whether identifiers are assigned locally. In remote
// mode the remote instance assigns them.
func (c *Config) UsesCounter() bool {
	return c.Renderer.Mode != RendererRemote
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Redis.Enabled || (c.UsesCounter() && c.Counter.Backend == CounterRedis)
}

// NeedsPostgres reports whether any configured component talks to PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	return c.UsesCounter() && c.Counter.Backend == CounterPostgres
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Renderer.Mode {
	case RendererOverlay:
		if c.Renderer.TemplatePath == "" {
			return fmt.Errorf("renderer.template_path is required in %q mode", RendererOverlay)
		}
	case RendererSynthetic:
	case RendererRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("remote.base_url is required in %q mode", RendererRemote)
		}
	default:
		return fmt.Errorf("unknown renderer.mode %q", c.Renderer.Mode)
	}

	switch c.Counter.Backend {
	case CounterFile, CounterRedis, CounterPostgres:
	default:
		return fmt.Errorf("unknown counter.backend %q", c.Counter.Backend)
	}
	if c.Counter.Width < 1 {
		return fmt.Errorf("counter.width must be positive, got %d", c.Counter.Width)
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: RCG_ (Receipt Generator).
// Nested keys use underscore: RCG_RENDERER_MODE, RCG_COUNTER_BACKEND, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 64<<10)
	v.SetDefault("renderer.mode", RendererSynthetic)
	v.SetDefault("renderer.template_path", "static/receipt_template.png")
	v.SetDefault("renderer.layout_file", "")
	v.SetDefault("counter.backend", CounterFile)
	v.SetDefault("counter.path", "receipt_counter.json")
	v.SetDefault("counter.key", "receipt_counter")
	v.SetDefault("counter.width", 4)
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout", "30s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "receipts")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.limit", 30)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: RCG_COUNTER_BACKEND -> counter.backend
	v.SetEnvPrefix("RCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
