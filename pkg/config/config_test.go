package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stm/pkg/database"
	"stm/pkg/store"
	"stm/pkg/timer"
)

func TestLoad_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, styles, err := Load(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "styles.json"))

	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "stm.db"), cfg.Database.DSN)
	assert.Equal(t, store.StorageKey, cfg.StorageKey)
	assert.Equal(t, 25, cfg.Timer.TotalMinutes)
	assert.True(t, cfg.Timer.Segmented)
	assert.NotEmpty(t, cfg.KeyMap)
	assert.Equal(t, DefaultStyles(), styles)

	// A second load reads back what the first one wrote
	again, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"database": {"driver": "postgres", "dsn": "postgres://localhost/stm"},
		"timer": {"total_minutes": 50, "segmented": false}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, database.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/stm", cfg.Database.DSN)
	assert.Equal(t, 50, cfg.Timer.TotalMinutes)
	assert.False(t, cfg.Timer.Segmented)
	assert.Equal(t, 5, cfg.Timer.ShortBreakMinutes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv("STM_TIMER_TOTAL_MINUTES", "90")
	t.Setenv("STM_STORAGE_KEY", "custom:v1")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Timer.TotalMinutes)
	assert.Equal(t, "custom:v1", cfg.StorageKey)
}

func TestLoad_CustomStyles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.json"), []byte(`{"accent_color": "99"}`), 0644))

	_, styles, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "99", styles.AccentColor)
	assert.Equal(t, DefaultStyles().BorderColor, styles.BorderColor)
}

func TestTimerConfig_Plan(t *testing.T) {
	assert.Equal(t, timer.SinglePlan(), TimerConfig{Segmented: false, FocusMinutes: 10}.Plan())

	plan := TimerConfig{Segmented: true, FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakEvery: 2}.Plan()
	assert.Equal(t, 50*time.Minute, plan.Focus)
	assert.Equal(t, 10*time.Minute, plan.ShortBreak)
	assert.Equal(t, timer.DefaultPlan().LongBreak, plan.LongBreak)
	assert.Equal(t, 2, plan.LongBreakEvery)
}
