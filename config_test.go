package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, int64(2*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, int64(50000), cfg.Dues.Amount)
	assert.Equal(t, "@hourly", cfg.Reconcile.Cron)
	assert.False(t, cfg.OCR.Enabled)
	assert.Equal(t, "himakeu_master", cfg.Postgres.Database)
	assert.Equal(t, "himakeu_transactions", cfg.MySQL.Database)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DUES_AMOUNT", "75000")
	t.Setenv("POSTGRES_HOST", "db-master")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("OCR_ENABLED", "true")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, int64(75000), cfg.Dues.Amount)
	assert.Equal(t, "db-master", cfg.Postgres.Host)
	assert.Equal(t, 3307, cfg.MySQL.Port)
	assert.True(t, cfg.OCR.Enabled)
}

func TestDSNBuilders(t *testing.T) {
	pg := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", pg.DSN())

	my := MySQLConfig{Host: "h", Port: 3306, User: "u", Password: "p", Database: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", my.DSN())
}
