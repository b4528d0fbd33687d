package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	GinMode string `env:"GIN_MODE" env-default:"debug"`
}

type HTTPConfig struct {
	Port string `env:"HTTP_PORT" env-default:"8080"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"taskuser"`
	Password string `env:"DB_PASSWORD" env-default:"taskpassword"`
	Name     string `env:"DB_NAME" env-default:"to_do_list"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD" env-default:""`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m"`
}

type SessionConfig struct {
	Secret string `env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}
