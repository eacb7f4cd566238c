// Package config loads service configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/teresa-solution/rental-management-service/internal/crypto"
)

// Config is the immutable process configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Crypto   CryptoConfig   `koanf:"crypto"`
	Log      LogConfig      `koanf:"log"`
}

type HTTPConfig struct {
	Addr           string  `koanf:"addr"`
	CORSOrigins    string  `koanf:"cors_origins"`
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

type GRPCConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type AuthConfig struct {
	Secret             string        `koanf:"secret"`
	ExpireMinutes      int           `koanf:"expire_minutes"`
	BcryptCost         int           `koanf:"bcrypt_cost"`
	LoginMaxFailures   int           `koanf:"login_max_failures"`
	LoginFailureWindow time.Duration `koanf:"login_failure_window"`
}

type CryptoConfig struct {
	AddressKey string `koanf:"address_key"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// envKeys maps the recognized environment variables onto config paths.
var envKeys = map[string]string{
	"JWT_SECRET_KEY":              "auth.secret",
	"ACCESS_TOKEN_EXPIRE_MINUTES": "auth.expire_minutes",
	"BCRYPT_COST":                 "auth.bcrypt_cost",
	"LOGIN_MAX_FAILURES":          "auth.login_max_failures",
	"LOGIN_FAILURE_WINDOW":        "auth.login_failure_window",
	"DATABASE_URL":                "database.url",
	"REDIS_ADDR":                  "redis.addr",
	"REDIS_PASSWORD":              "redis.password",
	"REDIS_DB":                    "redis.db",
	"HTTP_ADDR":                   "http.addr",
	"CORS_ALLOWED_ORIGINS":        "http.cors_origins",
	"RATE_LIMIT_RPS":              "http.rate_limit_rps",
	"RATE_LIMIT_BURST":            "http.rate_limit_burst",
	"GRPC_ADDR":                   "grpc.addr",
	"ADDRESS_ENCRYPTION_KEY":      "crypto.address_key",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
}

func defaults() map[string]any {
	return map[string]any{
		"http": map[string]any{
			"addr":             ":8000",
			"cors_origins":     "http://localhost:3000,http://localhost:5173",
			"rate_limit_rps":   20.0,
			"rate_limit_burst": 40,
		},
		"grpc": map[string]any{"addr": ":50051"},
		"auth": map[string]any{
			"expire_minutes":       30,
			"bcrypt_cost":          12,
			"login_max_failures":   5,
			"login_failure_window": "15m",
		},
		"log": map[string]any{"level": "info", "format": "console"},
	}
}

// mapProvider feeds an in-memory map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// Load reads defaults, then path (if not empty), then the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	transform := func(name string) string {
		return envKeys[name]
	}
	if err := k.Load(env.Provider("", ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.ExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Crypto.AddressKey != "" {
		if _, err := c.decodeAddressKey(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TokenTTL is the lifetime of issued access tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.ExpireMinutes) * time.Minute
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.HTTP.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AddressKey returns the key sealing tenant addresses. Without an explicit
// key one is derived from the signing secret.
func (c Config) AddressKey() ([]byte, error) {
	if c.Crypto.AddressKey != "" {
		return c.decodeAddressKey()
	}
	return crypto.DeriveKey([]byte(c.Auth.Secret), "tenant-address")
}

func (c Config) decodeAddressKey() ([]byte, error) {
	key, err := hex.DecodeString(c.Crypto.AddressKey)
	if err != nil {
		return nil, fmt.Errorf("ADDRESS_ENCRYPTION_KEY is not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ADDRESS_ENCRYPTION_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
