package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	JWTSigningKey   string        `yaml:"jwt_signing_key"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig is the Postgres connection. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	Migrate      bool   `yaml:"migrate"`
}

// RedisConfig configures the optional subject lock backend.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

// KafkaConfig configures the optional provisioning producer.
type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	ProvisioningTopic string   `yaml:"provisioning_topic"`
	ClientID          string   `yaml:"client_id"`
	Partitions        int32    `yaml:"partitions"`
}

// ProviderConfig selects and configures the verification provider adapter.
type ProviderConfig struct {
	Mode    string        `yaml:"mode"` // "bridge" or "fake"
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type FilesConfig struct {
	Root string `yaml:"root"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Config is the full process configuration.
type Config struct {
	Server   Server         `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Provider ProviderConfig `yaml:"provider"`
	Files    FilesConfig    `yaml:"files"`
	Log      LogConfig      `yaml:"log"`
}

// Defaults returns a config suitable for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			JWTSigningKey:   "dev-secret-key-change-in-production",
			JWTIssuer:       "verigate",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{MaxOpenConns: 10, Migrate: true},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LockTTL:      2 * time.Minute,
		},
		Kafka: KafkaConfig{
			ProvisioningTopic: "verigate.provisioning",
			ClientID:          "verigate",
			Partitions:        3,
		},
		Provider: ProviderConfig{Mode: "fake", Timeout: 30 * time.Second},
		Files:    FilesConfig{Root: "./data/files"},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// FromEnv builds a config from defaults and environment variables so main
// stays lean.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load overlays a YAML file on the defaults, then applies environment
// overrides. An empty path behaves like FromEnv.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Provider.Mode {
	case "fake":
	case "bridge":
		if c.Provider.BaseURL == "" || c.Provider.APIKey == "" {
			return fmt.Errorf("provider mode bridge requires base_url and api_key")
		}
	default:
		return fmt.Errorf("unknown provider mode %q", c.Provider.Mode)
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("jwt signing key is required")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "VERIGATE_ADDR")
	setString(&cfg.Server.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.Server.JWTIssuer, "JWT_ISSUER")
	setDuration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setInt(&cfg.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS")
	if v, ok := os.LookupEnv("DATABASE_MIGRATE"); ok {
		cfg.Database.Migrate = v == "true"
	}

	setString(&cfg.Redis.URL, "REDIS_URL")
	setInt(&cfg.Redis.PoolSize, "REDIS_POOL_SIZE")
	setDuration(&cfg.Redis.LockTTL, "LOCK_TTL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.ProvisioningTopic, "PROVISIONING_TOPIC")
	setString(&cfg.Kafka.ClientID, "KAFKA_CLIENT_ID")

	setString(&cfg.Provider.Mode, "PROVIDER_MODE")
	setString(&cfg.Provider.BaseURL, "PROVIDER_BASE_URL")
	setString(&cfg.Provider.APIKey, "PROVIDER_API_KEY")
	setDuration(&cfg.Provider.Timeout, "PROVIDER_TIMEOUT")

	setString(&cfg.Files.Root, "FILES_ROOT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
