package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full environment-driven configuration. Every key maps to an
// env var by upper-casing and replacing dots with underscores, e.g.
// postgres.host -> POSTGRES_HOST, upload.max_bytes -> UPLOAD_MAX_BYTES.
type Config struct {
	Port          int    `mapstructure:"port"`
	Env           string `mapstructure:"env"` // development | production
	SessionSecret string `mapstructure:"session_secret"`
	FrontendURL   string `mapstructure:"frontend_url"` // allowed CORS origin

	Upload    UploadConfig    `mapstructure:"upload"`
	Dues      DuesConfig      `mapstructure:"dues"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Log       LogConfig       `mapstructure:"log"`

	Postgres PostgresConfig `mapstructure:"postgres"` // master data
	MySQL    MySQLConfig    `mapstructure:"mysql"`    // transactions
}

type UploadConfig struct {
	Base     string `mapstructure:"base"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type DuesConfig struct {
	Amount int64 `mapstructure:"amount"` // whole rupiah per period
}

type OCRConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ReconcileConfig struct {
	Cron  string `mapstructure:"cron"`
	Watch bool   `mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// PostgresConfig points at the master database (members + credentials).
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// MySQLConfig points at the transactions database (the ledger).
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// loadConfig reads a local .env (if present) into the environment, then
// resolves defaults < env vars.
func loadConfig() (*Config, error) {
	_ = godotenv.Load() // optional

	v := viper.New()
	v.SetDefault("port", 3000)
	v.SetDefault("env", "development")
	v.SetDefault("session_secret", "dev-insecure-secret-change")
	v.SetDefault("frontend_url", "http://localhost:8080")

	v.SetDefault("upload.base", "uploads")
	v.SetDefault("upload.max_bytes", 2*1024*1024)
	v.SetDefault("dues.amount", 50000)
	v.SetDefault("ocr.enabled", false)
	v.SetDefault("reconcile.cron", "@hourly")
	v.SetDefault("reconcile.watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "himakeu_master")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "himakeu_transactions")
	v.SetDefault("mysql.max_open_conns", 10)
	v.SetDefault("mysql.max_idle_conns", 5)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
