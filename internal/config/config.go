package config

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// DefaultBaseURL is where the authoring backend listens in local setups
const DefaultBaseURL = "http://127.0.0.1:8000/"

type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

type ClientConfig struct {
	BaseURL   string        `yaml:"base_url" env:"YUI_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"YUI_HTTP_TIMEOUT"` // zero keeps the transport default
	UserAgent string        `yaml:"user_agent" env:"YUI_USER_AGENT"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" env:"YUI_SERVER_HOST"`
	Port         int           `yaml:"port" env:"YUI_SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"YUI_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"YUI_SERVER_WRITE_TIMEOUT"`
	DataDir      string        `yaml:"data_dir" env:"YUI_DATA_DIR"` // empty keeps names only
}

// Store drivers understood by the stub server
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

type StoreConfig struct {
	Driver string      `yaml:"driver" env:"YUI_STORE_DRIVER"`
	Redis  RedisConfig `yaml:"redis"`
	MySQL  MySQLConfig `yaml:"mysql"`
}

type RedisConfig struct {
	Host      string `yaml:"host" env:"YUI_REDIS_HOST"`
	Port      int    `yaml:"port" env:"YUI_REDIS_PORT"`
	Password  string `yaml:"password" env:"YUI_REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"YUI_REDIS_DB"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix" env:"YUI_REDIS_PREFIX"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host" env:"YUI_MYSQL_HOST"`
	Port            int           `yaml:"port" env:"YUI_MYSQL_PORT"`
	Username        string        `yaml:"username" env:"YUI_MYSQL_USER"`
	Password        string        `yaml:"password" env:"YUI_MYSQL_PASSWORD"`
	Database        string        `yaml:"database" env:"YUI_MYSQL_DATABASE"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN builds the go-sql-driver connection string
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

type LoggingConfig struct {
	Prefix string `yaml:"prefix"`
	Flags  int    `yaml:"flags"`
	Quiet  bool   `yaml:"quiet" env:"YUI_LOG_QUIET"`
}

// Default returns a configuration that works against a local backend
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   30 * time.Second,
			UserAgent: "yui-studio",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Driver: StoreMemory,
			Redis: RedisConfig{
				Host:      "localhost",
				Port:      6379,
				PoolSize:  10,
				KeyPrefix: "yui",
			},
			MySQL: MySQLConfig{
				Host:            "localhost",
				Port:            3306,
				Database:        "yui",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: time.Hour,
			},
		},
		Logging: LoggingConfig{
			Flags: 3, // log.LstdFlags
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// An empty path skips the file. Environment variables win over both.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply their own
// overrides before calling Validate.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the values the client and stub server rely on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Client.BaseURL) == "" {
		return fmt.Errorf("client.base_url is required")
	}
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil {
		return fmt.Errorf("client.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("client.base_url: unsupported scheme %q", u.Scheme)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}

	switch c.Store.Driver {
	case StoreMemory, StoreRedis, StoreMySQL:
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	return nil
}

// Addr is the listen address of the stub server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NewLogger builds the logger shared by the client and the stub server
func (l LoggingConfig) NewLogger() *log.Logger {
	if l.Quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, l.Prefix, l.Flags)
}
