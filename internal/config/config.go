package config

import (
	"os"
	"strconv"
)

type Config struct {
	Env               string
	Port              int
	DatabaseURL       string
	JWTSecret         string
	PaystackSecretKey string
	PaystackPublicKey string
	KafkaBrokers      string
	AdminUsername     string
	AdminPassword     string
	LogJSON           bool
}

func Default() Config {
	return Config{
		Env:     "dev",
		Port:    5000,
		LogJSON: true,
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("NORA_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("NORA_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("NORA_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("PAYSTACK_SECRET_KEY"); v != "" {
		c.PaystackSecretKey = v
	}
	if v := os.Getenv("PAYSTACK_PUBLIC_KEY"); v != "" {
		c.PaystackPublicKey = v
	}
	if v := os.Getenv("NORA_KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = v
	}
	if v := os.Getenv("NORA_ADMIN_USERNAME"); v != "" {
		c.AdminUsername = v
	}
	if v := os.Getenv("NORA_ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("NORA_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	return c
}
