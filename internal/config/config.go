// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string `yaml:"aws_region"`
	S3Bucket  string `yaml:"s3_bucket"`

	// Database
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBName     string `yaml:"db_name"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`

	// SES
	SESSenderEmail   string   `yaml:"ses_sender_email"`
	SummaryReceivers []string `yaml:"summary_receivers"`

	// Pipeline
	WindowDays          int    `yaml:"window_days"`
	SnapshotDate        string `yaml:"snapshot_date"`
	RawTransactionsPath string `yaml:"raw_transactions_path"`

	// Application
	Stage    string `yaml:"stage"`
	LogLevel string `yaml:"log_level"`
}

// Load loads configuration from an optional config.yaml file and environment
// variables. Environment variables win over the file.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		AWSRegion:           "us-east-1",
		S3Bucket:            "lifecycle-intelligence-raw-dev",
		DBHost:              "localhost",
		DBPort:              5432,
		DBName:              "lifecycle_intelligence",
		DBUser:              "postgres",
		WindowDays:          90,
		RawTransactionsPath: "data/raw/online_retail_ii.csv",
		Stage:               "dev",
		LogLevel:            "info",
	}

	// Overlay from YAML if present
	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnvInt("DB_PORT", cfg.DBPort)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.SESSenderEmail = getEnv("SES_SENDER_EMAIL", cfg.SESSenderEmail)
	cfg.SummaryReceivers = getEnvList("SUMMARY_RECEIVERS", cfg.SummaryReceivers)
	cfg.WindowDays = getEnvInt("WINDOW_DAYS", cfg.WindowDays)
	cfg.SnapshotDate = getEnv("SNAPSHOT_DATE", cfg.SnapshotDate)
	cfg.RawTransactionsPath = getEnv("RAW_TRANSACTIONS_PATH", cfg.RawTransactionsPath)
	cfg.Stage = getEnv("STAGE", cfg.Stage)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require"
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a slice.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
