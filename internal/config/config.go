// Package config содержит логику чтения конфигурации сервиса SAWA.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Ошибки конфигурации секретов: обнаруживаются на старте процесса,
// а не при первом обращении к компоненту.
var (
	ErrNoTokenSecret = errors.New("TOKEN_SECRET is required")
	ErrNoHMACSecret  = errors.New("HMAC_SECRET is required")
)

// Config содержит параметры конфигурации сервиса SAWA.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`

	TokenSecret string `env:"TOKEN_SECRET"`
	HMACSecret  string `env:"HMAC_SECRET"`
	BcryptCost  int    `env:"BCRYPT_COST" envDefault:"12"`

	UploadDir string `env:"UPLOAD_DIR"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@gmail.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"Admin@1234"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения и проверяет наличие обязательных секретов.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envUploadDir := cfg.UploadDir

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.UploadDir, "u", "uploads", "directory for uploaded files")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envUploadDir != "" {
		cfg.UploadDir = envUploadDir
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	if cfg.TokenSecret == "" {
		return nil, ErrNoTokenSecret
	}
	if cfg.HMACSecret == "" {
		return nil, ErrNoHMACSecret
	}

	return cfg, nil
}
