package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string `env:"HTTP_PORT" envDefault:"8080"`
	AppVersion       string `env:"APP_VERSION" envDefault:"1.0.0"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	ConsentDBPath    string `env:"CONSENT_DB_PATH" envDefault:"consent.db"`
	JWTSecret        string `env:"JWT_SECRET"`
	ClaimTTLHours    int    `env:"CLAIM_TTL_HOURS" envDefault:"720"`
	AdminKeyHash     string `env:"ADMIN_KEY_HASH"`
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	SubmitRateWindow int    `env:"SUBMIT_RATE_WINDOW_SECONDS" envDefault:"60"`
	SubmitRateMax    int    `env:"SUBMIT_RATE_MAX" envDefault:"5"`
	LeaderboardTTL   int    `env:"LEADERBOARD_TTL_SECONDS" envDefault:"30"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
