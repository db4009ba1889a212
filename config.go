package main

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Port     int            `json:"port"`
	Env      string         `json:"env"`
	Database PostgresConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Google   GoogleConfig   `json:"google"`
	Stripe   StripeConfig   `json:"stripe"`
	SendGrid SendGridConfig `json:"sendgrid"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// AuthConfig configures the session token issuer: the HMAC signing secret
// and the token lifetime.
type AuthConfig struct {
	Secret        string `json:"secret"`
	ExpiryMinutes int    `json:"expiry_minutes"`
}

// GoogleConfig configures the external identity verifier. An empty ClientID
// disables external-identity verification.
type GoogleConfig struct {
	ClientID string `json:"client_id"`
}

// StripeConfig configures the payment provider: secret key, the checkout
// redirect destinations, and the fixed price in cents.
type StripeConfig struct {
	SecretKey  string `json:"secret_key"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	UnitAmount int64  `json:"unit_amount"`
}

// SendGridConfig configures the outbound mail sender. An empty APIKey
// disables mail dispatch.
type SendGridConfig struct {
	APIKey        string `json:"api_key"`
	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"sender_address"`
}

func DefaultConfig() Config {
	return Config{
		Port: 5000,
		Env:  "dev",
		Auth: AuthConfig{
			Secret:        "secret-random-string",
			ExpiryMinutes: 120,
		},
		Stripe: StripeConfig{
			SuccessURL: "http://localhost:3000/success",
			CancelURL:  "http://localhost:3000/cancel",
			UnitAmount: 499,
		},
		Database: DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "postpulse",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it returns the default dev setup. In production the file is
// required and startup panics without it.
func LoadConfig(prod bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if prod {
			panic("a .config.json file is required when running in production")
		}
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	fmt.Println("Successfully loaded .config.json")
	return c
}
