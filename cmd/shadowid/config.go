package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	shadowid "github.com/shadowid/shadowid"
)

// serviceConfig is everything the binary reads from the environment.
// All knobs use the SHADOWID_ prefix.
type serviceConfig struct {
	Addr      string
	RedisAddr string
	PGDSN     string

	LogFormat string
	LogLevel  string

	Engine shadowid.Config
}

func loadConfig() (serviceConfig, error) {
	cfg := serviceConfig{
		Addr:      envStr("SHADOWID_ADDR", ":8000"),
		RedisAddr: envStr("SHADOWID_REDIS_ADDR", "localhost:6379"),
		PGDSN:     os.Getenv("SHADOWID_PG_DSN"),
		LogFormat: envStr("SHADOWID_LOG_FORMAT", "json"),
		LogLevel:  envStr("SHADOWID_LOG_LEVEL", "info"),
		Engine:    shadowid.DefaultConfig(),
	}

	secret := os.Getenv("SHADOWID_SIGNING_SECRET")
	if secret == "" {
		return cfg, fmt.Errorf("SHADOWID_SIGNING_SECRET is required")
	}
	cfg.Engine.JWT.Secret = []byte(secret)
	cfg.Engine.JWT.SigningMethod = envStr("SHADOWID_SIGNING_ALGORITHM", "hs256")

	keyHex := os.Getenv("SHADOWID_ENCRYPTION_KEY")
	if keyHex == "" {
		return cfg, fmt.Errorf("SHADOWID_ENCRYPTION_KEY is required (64 hex chars)")
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return cfg, fmt.Errorf("SHADOWID_ENCRYPTION_KEY: %w", err)
	}
	cfg.Engine.Seal.Key = key

	cfg.Engine.JWT.AccessTTL = time.Duration(envInt("SHADOWID_ACCESS_TOKEN_TTL_MINUTES", 30)) * time.Minute
	cfg.Engine.JWT.RefreshTTL = time.Duration(envInt("SHADOWID_REFRESH_TOKEN_TTL_MINUTES", 7*24*60)) * time.Minute

	cfg.Engine.Guard.MaxAttempts = envInt("SHADOWID_MAX_LOGIN_ATTEMPTS", cfg.Engine.Guard.MaxAttempts)
	cfg.Engine.Guard.Window = time.Duration(envInt("SHADOWID_RATE_LIMIT_WINDOW_SECONDS", int(cfg.Engine.Guard.Window.Seconds()))) * time.Second
	cfg.Engine.Guard.BlockDuration = time.Duration(envInt("SHADOWID_LOGIN_BLOCK_DURATION_SECONDS", int(cfg.Engine.Guard.BlockDuration.Seconds()))) * time.Second
	cfg.Engine.Guard.MaxBlockDuration = time.Duration(envInt("SHADOWID_MAX_BLOCK_DURATION_SECONDS", int(cfg.Engine.Guard.MaxBlockDuration.Seconds()))) * time.Second
	cfg.Engine.Guard.FailOpen = envBool("SHADOWID_GUARD_FAIL_OPEN", false)

	cfg.Engine.StoreTimeout = time.Duration(envInt("SHADOWID_STORE_TIMEOUT_SECONDS", int(cfg.Engine.StoreTimeout.Seconds()))) * time.Second

	if err := cfg.Engine.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
