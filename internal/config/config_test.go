package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/rentals")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, 5, cfg.Auth.LoginMaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginFailureWindow)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOGIN_FAILURE_WINDOW", "1m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.TokenTTL())
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Auth.LoginFailureWindow)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
}

func TestLoad_FileThenEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("GRPC_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "http:\n  addr: \":8500\"\ngrpc:\n  addr: \":6000\"\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8500", cfg.HTTP.Addr)
	assert.Equal(t, ":7000", cfg.GRPC.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/rentals")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestAddressKey(t *testing.T) {
	cfg := Config{Auth: AuthConfig{Secret: "s3cret"}}

	derived, err := cfg.AddressKey()
	require.NoError(t, err)
	assert.Len(t, derived, 32)

	again, err := cfg.AddressKey()
	require.NoError(t, err)
	assert.Equal(t, derived, again)

	cfg.Crypto.AddressKey = strings.Repeat("ab", 32)
	explicit, err := cfg.AddressKey()
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), explicit[0])

	cfg.Crypto.AddressKey = "abcd"
	_, err = cfg.AddressKey()
	assert.Error(t, err)
}
