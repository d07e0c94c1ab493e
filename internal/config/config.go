package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP   HTTPConfig
	DB     DBConfig
	Stripe StripeConfig
	JWT    JWTConfig
	SMTP   SMTPConfig
	Google GoogleConfig
}

type HTTPConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// UseMockGateway swaps the real processor for the in-process mock,
	// for local development without Stripe credentials.
	UseMockGateway bool
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// GoogleConfig enables sign-in with Google when a client id is present.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// ClientURL is the frontend the OAuth callback redirects to with the
	// issued token; empty means the token is returned as JSON.
	ClientURL string
}

func (c GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Port: getEnv("PORT", "8000"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "shinab"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			UseMockGateway: getEnv("PAYMENT_GATEWAY", "stripe") == "mock",
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			TokenTTL: getDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("EMAIL_HOST", ""),
			Port:     getEnv("EMAIL_PORT", "587"),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			From:     getEnv("EMAIL_FROM", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("GOOGLE_CALLBACK_URL", ""),
			ClientURL:    getEnv("CLIENT_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.Stripe.UseMockGateway {
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
		}
	}
	if c.Google.Enabled() {
		if c.Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if c.Google.CallbackURL == "" {
			return fmt.Errorf("GOOGLE_CALLBACK_URL is required when GOOGLE_CLIENT_ID is set")
		}
	}
	return nil
}

func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
