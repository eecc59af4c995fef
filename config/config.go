package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the server. Tags use mapstructure
// for Viper unmarshalling; every key can be supplied via environment variable
// of the same name.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	JWTSecretKey      string `mapstructure:"JWT_SECRET_KEY"`
	AccessTokenTTLMin int    `mapstructure:"ACCESS_TOKEN_TTL_MIN"`

	// Device-session policy. MaxActiveDevices caps concurrent sessions per
	// account, oldest evicted first; SingleSession makes every login revoke
	// all prior sessions and overrides the cap entirely.
	MaxActiveDevices int  `mapstructure:"MAX_ACTIVE_DEVICES"`
	SingleSession    bool `mapstructure:"SINGLE_SESSION"`
}

// LoadConfig reads configuration from file, environment variables and
// defaults. Both knobs of the device policy are read once here; changing them
// requires a restart and does not retroactively touch existing sessions.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/coursehub/")
	v.AddConfigPath(".")

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "coursehub")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 30)
	v.SetDefault("MAX_ACTIVE_DEVICES", 5)
	v.SetDefault("SINGLE_SESSION", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine; env vars and defaults cover everything.
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *ServerConfig) Validate() error {
	if c.MaxActiveDevices < 1 {
		return fmt.Errorf("MAX_ACTIVE_DEVICES must be >= 1, got %d", c.MaxActiveDevices)
	}
	if c.AccessTokenTTLMin < 1 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be >= 1, got %d", c.AccessTokenTTLMin)
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	return nil
}
