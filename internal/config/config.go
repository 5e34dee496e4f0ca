package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string   `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string   `env:"DATABASE_URL,required,notEmpty"`
	SecretKey     string   `env:"SECRET_KEY"`
	TokenIssuer   string   `env:"TOKEN_ISSUER" envDefault:"blog-api"`
	FrontendURLs  []string `env:"FRONTEND_URLS" envSeparator:","`
	RateLimit     string   `env:"RATE_LIMIT" envDefault:"60-M"`
	RedisAddr     string   `env:"REDIS_ADDR"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	RedisDB       int      `env:"REDIS_DB" envDefault:"0"`
	EnableHSTS    bool     `env:"ENABLE_HSTS" envDefault:"false"`
	AutoMigrate   bool     `env:"AUTO_MIGRATE" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.FrontendURLs = cleanOrigins(cfg.FrontendURLs)
	return &cfg, nil
}

func cleanOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	seen := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
