package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Port the HTTP server listens on
	Port string `env:"PORT" envDefault:"5000"`

	// Path to the SQLite database file. Empty means keep everything in memory.
	DatabasePath string `env:"DATABASE_PATH"`

	// Origin allowed by CORS (the client SPA)
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Auth configuration
	Auth struct {
		// Secret used to sign session tokens
		JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

		// Session token lifetime in hours
		TokenTTLHours int `env:"TOKEN_TTL_HOURS" envDefault:"72"`

		// Bcrypt cost factor for password hashing
		BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	}

	// History configuration
	History struct {
		// Default number of predictions returned by the history endpoint
		DefaultLimit int `env:"HISTORY_LIMIT" envDefault:"10"`

		// Upper bound a caller may request
		MaxLimit int `env:"HISTORY_LIMIT_MAX" envDefault:"50"`
	}
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
