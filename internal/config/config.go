// Package config handles configuration loading for the task service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the task service.
type Config struct {
	DBHost     string `env:"DB_HOST,required"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBName     string `env:"DB_NAME,required"`

	RedisHost     string `env:"REDIS_HOST,required"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JWTSecret    string        `env:"JWT_SECRET,required"`
	JWTExpiry    time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"1h"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// CookieSecure reports whether auth cookies should carry the Secure flag.
// Disabled in development so the API works over plain HTTP locally.
func (c *Config) CookieSecure() bool {
	return c.Environment == "production"
}
