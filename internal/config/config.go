package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	LogLevel       string
	JWTSecret      string
	TokenTTL       time.Duration
	RedisURL       string // empty keeps the registry in memory and events in the log
	EventsChannel  string
	DatabaseDriver string // sqlite or postgres
	DatabaseURL    string // empty disables the journal
	FaucetEnabled  bool
}

// Load loads config from env and an optional .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("EVENTS_CHANNEL", "auction-events")
	v.SetDefault("DATABASE_DRIVER", "sqlite")

	env := v.GetString("APP_ENV")
	v.SetDefault("FAUCET_ENABLED", env != "production")
	if env != "production" {
		v.SetDefault("JWT_SECRET", "development-secret")
	}

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("config: invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}

	driver := strings.ToLower(v.GetString("DATABASE_DRIVER"))
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("config: unsupported DATABASE_DRIVER %q", driver)
	}

	cfg := &Config{
		Env:            env,
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       ttl,
		RedisURL:       v.GetString("REDIS_URL"),
		EventsChannel:  v.GetString("EVENTS_CHANNEL"),
		DatabaseDriver: driver,
		DatabaseURL:    v.GetString("DATABASE_URL"),
		FaucetEnabled:  v.GetBool("FAUCET_ENABLED"),
	}

	if cfg.JWTSecret == "" && env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET is required in production")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}
