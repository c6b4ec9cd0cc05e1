package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	PasswordSalt string

	// Optional bootstrap administrator, created (or promoted) at startup.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// ParseFlags validates flags and fills the configuration, falling back to
// environment variables (a .env file is honored if present).
func ParseFlags(args []string) (Config, error) {
	// Best effort: local development keeps secrets in .env
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("gala-premios", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.PasswordSalt, "password-salt", "", "Password hash salt (prefer env)")
	fs.StringVar(&cfg.AdminUsername, "admin-user", "", "Bootstrap admin username (prefer env)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "postgres"
		}
	}
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return Config{}, errors.New("DATABASE_TYPE must be postgres or sqlite")
	}

	// Secrets - MUST be provided
	if cfg.PasswordSalt == "" {
		cfg.PasswordSalt = os.Getenv("PASSWORD_SALT")
	}
	if cfg.PasswordSalt == "" {
		return Config{}, errors.New("PASSWORD_SALT required")
	}

	if cfg.AdminUsername == "" {
		cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}

	return cfg, nil
}
