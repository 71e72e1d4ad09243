package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	AppName    string

	// SSLCommerz store credentials and callback routes.
	StoreID       string
	StorePassword string
	Sandbox       bool
	Currency      string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		AppName:    getEnv("APP_NAME", "bazarpay"),

		StoreID:       os.Getenv("SSLCZ_STORE_ID"),
		StorePassword: os.Getenv("SSLCZ_STORE_PASSWORD"),
		Sandbox:       getBool("SSLCZ_SANDBOX", true),
		Currency:      getEnv("SSLCZ_CURRENCY", "BDT"),
		SuccessURL:    os.Getenv("SSLCZ_SUCCESS_URL"),
		FailURL:       os.Getenv("SSLCZ_FAIL_URL"),
		CancelURL:     os.Getenv("SSLCZ_CANCEL_URL"),
		IPNURL:        os.Getenv("SSLCZ_IPN_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
