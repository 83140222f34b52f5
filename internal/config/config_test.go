package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/geofarm/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEOFARM_PORT", "GEOFARM_ADMIN_KEY", "GEOFARM_LEDGER_PATH", "GEOFARM_CATALOG",
		"GEOFARM_GAME_FILE", "GEOFARM_TICK_INTERVAL", "GEOFARM_SEED", "GEOFARM_LOG_LEVEL", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "data/geofarm.db", cfg.LedgerPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 50000.0, cfg.Game.StartingBalance)
	assert.Equal(t, model.HemisphereSouth, cfg.Game.Hemisphere)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOFARM_PORT", "9090")
	t.Setenv("GEOFARM_TICK_INTERVAL", "250ms")
	t.Setenv("GEOFARM_SEED", "7")
	t.Setenv("GEOFARM_LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://geofarm.example")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173", "https://geofarm.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(7), cfg.StoreConfig().Seed)
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOFARM_PORT", "eighty")
	_, err := FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("GEOFARM_TICK_INTERVAL", "-1s")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoadGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
player_name: Ana
starting_balance: 120000
start_location: {lat: 45.5, lng: -73.6}
hemisphere: north
price_retention: 72h
`), 0o644))

	clearEnv(t)
	t.Setenv("GEOFARM_GAME_FILE", path)
	cfg, err := FromEnv()
	require.NoError(t, err)

	g := cfg.Game
	assert.Equal(t, "Ana", g.PlayerName)
	assert.Equal(t, 120000.0, g.StartingBalance)
	assert.Equal(t, model.HemisphereNorth, g.Hemisphere)
	assert.Equal(t, 72*time.Hour, g.PriceRetention)
	assert.Equal(t, 1.0, g.GameSpeed, "unset keys keep defaults")

	sc := cfg.StoreConfig()
	assert.Equal(t, "Ana", sc.PlayerName)
	assert.Equal(t, 45.5, sc.StartLocation.Lat)
}

func TestLoadGameValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hemisphere: east\n"), 0o644))
	_, err := LoadGame(path)
	assert.ErrorContains(t, err, "hemisphere")

	_, err = LoadGame(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
