package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaultOriginAddress is the dispatch station used when a reading arrives
// without a current location.
const defaultOriginAddress = "17-22, 2nd Main Rd, Vinayak Nagar, Kattigenahalli, Bengaluru, Karnataka 560064"

type Config struct {
	Port          string        `mapstructure:"PORT"`
	HospitalPort  string        `mapstructure:"HOSPITAL_PORT"`
	Env           string        `mapstructure:"ENV"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32         `mapstructure:"DB_MIN_CONNS"`
	AmbulanceURL  string        `mapstructure:"AMBULANCE_URL"`
	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	PredictAddr   string        `mapstructure:"PREDICT_ADDR"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	OriginAddress string        `mapstructure:"ORIGIN_ADDRESS"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("HOSPITAL_PORT", "5001")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AMBULANCE_URL", "http://localhost:5000")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")
	v.SetDefault("PREDICT_ADDR", "")
	v.SetDefault("ORIGIN_ADDRESS", defaultOriginAddress)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("HOSPITAL_PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AMBULANCE_URL")
	v.BindEnv("NOTIFY_TIMEOUT")
	v.BindEnv("PREDICT_ADDR")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("ORIGIN_ADDRESS")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production a
// real JWT secret must be configured; in development a built-in secret is
// substituted so crew login still works out of the box.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.NotifyTimeout)
	}
	if c.AmbulanceURL == "" {
		return fmt.Errorf("AMBULANCE_URL is required")
	}
	return nil
}

// ResolvedJWTSecret returns the configured secret, substituting a fixed
// development-only value when none is set outside production.
func (c *Config) ResolvedJWTSecret() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}
	return "dev-secret-do-not-use-in-production"
}
