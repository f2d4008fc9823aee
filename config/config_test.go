package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.True(t, cfg.IsDevelopment())

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, 0, cfg.Scheduler.DailyCacheHour)
	assert.Equal(t, 0, cfg.Scheduler.DailyCacheMinute)
	assert.Empty(t, cfg.Scheduler.DailyCacheCron)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Asia/Almaty")
	t.Setenv("SCHEDULER_REFRESH_INTERVAL", "90s")
	t.Setenv("SCHEDULER_DAILY_CACHE_HOUR", "3")
	t.Setenv("SCHEDULER_DAILY_CACHE_CRON", "30 4 * * *")
	t.Setenv("DB_MAX_CONNS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Almaty", cfg.App.Timezone)
	assert.Equal(t, "Asia/Almaty", cfg.App.Location.String())
	assert.Equal(t, 90*time.Second, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, 3, cfg.Scheduler.DailyCacheHour)
	assert.Equal(t, "30 4 * * *", cfg.Scheduler.DailyCacheCron)
	assert.Equal(t, 50, cfg.Database.MaxConns)
}

func TestLoad_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.App.Location)
}

func TestValidate_RejectsBadSchedule(t *testing.T) {
	t.Setenv("SCHEDULER_DAILY_CACHE_HOUR", "25")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_ProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
