package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/pkg/config"
)

func TestLoad_DefaultsDeStock(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Stock.ExpiryHorizonDays)
	assert.Equal(t, float64(3), cfg.Stock.OverstockFactor)
	assert.Equal(t, 30, cfg.Stock.ConsumptionWindowDays)
	assert.Equal(t, 24, cfg.Stock.DeleteGuardHours)
}

func TestLoad_EnvPisaDefaults(t *testing.T) {
	t.Setenv("STOCK_EXPIRY_HORIZON_DAYS", "45")
	t.Setenv("STOCK_OVERSTOCK_FACTOR", "2.5")
	t.Setenv("STOCK_DELETE_GUARD_HOURS", "6")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Stock.ExpiryHorizonDays)
	assert.Equal(t, 2.5, cfg.Stock.OverstockFactor)
	assert.Equal(t, 6, cfg.Stock.DeleteGuardHours)
}

func TestDBConfig_DSNEscapaCredenciales(t *testing.T) {
	db := config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "labstock",
		Password: "p@ss:word/2026",
		DBName:   "labstock",
		SSLMode:  "disable",
	}

	dsn := db.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.NotContains(t, dsn, "p@ss:word/2026",
		"la contraseña debe viajar URL-encoded en el DSN")
}

func TestDBConfig_DatabaseURLTienePrioridad(t *testing.T) {
	db := config.DBConfig{
		DatabaseURL: "postgresql://u:p@db:5432/app?sslmode=require",
		Host:        "ignorado",
	}
	assert.Equal(t, db.DatabaseURL, db.ConnectionString())
}

func TestHTTPConfig_Addr(t *testing.T) {
	h := config.HTTPConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", h.Addr())
}
