package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Публичный адрес приложения — попадает в ссылки приглашений
	// и одноразовых секретов.
	AppBaseURL string `env:"APP_BASE_URL"`

	// Политики времени жизни
	InvitationTTLHours int `env:"INVITATION_TTL_HOURS"`
	SecretTTLHours     int `env:"SECRET_TTL_HOURS"`
	SecretMaxViews     int `env:"SECRET_MAX_VIEWS"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address:port для HTTP-сервера")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.StringVar(&cfg.AppBaseURL, "app-base-url", cfg.AppBaseURL, "публичный URL приложения для ссылок в письмах")
	flag.IntVar(&cfg.InvitationTTLHours, "invitation-ttl", cfg.InvitationTTLHours, "TTL приглашения, часов")
	flag.IntVar(&cfg.SecretTTLHours, "secret-ttl", cfg.SecretTTLHours, "TTL одноразового секрета, часов")
	flag.IntVar(&cfg.SecretMaxViews, "secret-max-views", cfg.SecretMaxViews, "лимит просмотров одноразового секрета")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// BaseURL строго в виде "address:port" (без схемы и пути), иначе дефолт
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.AppBaseURL == "" {
		if cfg.EnableHTTPS {
			cfg.AppBaseURL = "https://" + cfg.BaseURL
		} else {
			cfg.AppBaseURL = "http://" + cfg.BaseURL
		}
	}
	if cfg.InvitationTTLHours <= 0 {
		cfg.InvitationTTLHours = 72
	}
	if cfg.SecretTTLHours <= 0 {
		cfg.SecretTTLHours = 24
	}
	if cfg.SecretMaxViews <= 0 {
		cfg.SecretMaxViews = 1
	}

	return cfg
}

// InvitationTTL возвращает срок действия приглашения как Duration.
func (c *Config) InvitationTTL() time.Duration {
	return time.Duration(c.InvitationTTLHours) * time.Hour
}

// SecretTTL возвращает срок действия одноразового секрета как Duration.
func (c *Config) SecretTTL() time.Duration {
	return time.Duration(c.SecretTTLHours) * time.Hour
}
