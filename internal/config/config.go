// Package config loads server settings from the environment (and an
// optional .env file) plus an optional YAML game tuning file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/geofarm/internal/engine"
	"github.com/talgya/geofarm/internal/model"
)

// Config holds process-level settings.
type Config struct {
	Port         int
	AdminKey     string
	LedgerPath   string
	CatalogPath  string // Empty uses the embedded catalog
	GameFile     string
	TickInterval time.Duration
	Seed         int64
	LogLevel     slog.Level
	CORSOrigins  []string
	Game         Game
}

// Game tunes the starting conditions of a new game.
type Game struct {
	PlayerName      string            `yaml:"player_name"`
	StartingBalance float64           `yaml:"starting_balance"`
	StartLocation   model.Coordinates `yaml:"start_location"`
	Hemisphere      model.Hemisphere  `yaml:"hemisphere"`
	PriceRetention  time.Duration     `yaml:"price_retention"`
	GameSpeed       float64           `yaml:"game_speed"`
}

// DefaultGame mirrors the engine defaults.
func DefaultGame() Game {
	d := engine.DefaultStoreConfig()
	return Game{
		PlayerName:      d.PlayerName,
		StartingBalance: d.StartingBalance,
		StartLocation:   d.StartLocation,
		Hemisphere:      d.Hemisphere,
		PriceRetention:  d.PriceRetention,
		GameSpeed:       1,
	}
}

// Load reads .env when present, then the environment, then the game file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() (*Config, error) {
	port, err := getEnvInt("GEOFARM_PORT", 8080)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt("GEOFARM_SEED", 0)
	if err != nil {
		return nil, err
	}
	interval, err := time.ParseDuration(getEnv("GEOFARM_TICK_INTERVAL", "1s"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("GEOFARM_TICK_INTERVAL: invalid duration %q", os.Getenv("GEOFARM_TICK_INTERVAL"))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("GEOFARM_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("GEOFARM_LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:         port,
		AdminKey:     os.Getenv("GEOFARM_ADMIN_KEY"),
		LedgerPath:   getEnv("GEOFARM_LEDGER_PATH", "data/geofarm.db"),
		CatalogPath:  os.Getenv("GEOFARM_CATALOG"),
		GameFile:     os.Getenv("GEOFARM_GAME_FILE"),
		TickInterval: interval,
		Seed:         int64(seed),
		LogLevel:     level,
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		Game:         DefaultGame(),
	}

	if cfg.GameFile != "" {
		game, err := LoadGame(cfg.GameFile)
		if err != nil {
			return nil, err
		}
		cfg.Game = game
	}
	return cfg, nil
}

// LoadGame reads a YAML tuning file. Keys left out keep their defaults.
func LoadGame(path string) (Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Game{}, fmt.Errorf("read game file: %w", err)
	}
	g := DefaultGame()
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return Game{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := g.validate(); err != nil {
		return Game{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func (g Game) validate() error {
	switch {
	case g.Hemisphere != model.HemisphereNorth && g.Hemisphere != model.HemisphereSouth:
		return fmt.Errorf("hemisphere must be north or south, got %q", g.Hemisphere)
	case g.StartLocation.Lat < -90 || g.StartLocation.Lat > 90 ||
		g.StartLocation.Lng < -180 || g.StartLocation.Lng > 180:
		return fmt.Errorf("start location out of range: %v", g.StartLocation)
	case g.PriceRetention < 24*time.Hour:
		return fmt.Errorf("price retention must cover at least 24h, got %s", g.PriceRetention)
	case g.GameSpeed < 0 || g.GameSpeed > engine.MaxGameSpeed:
		return fmt.Errorf("game speed must be within 0-%d, got %v", engine.MaxGameSpeed, g.GameSpeed)
	}
	return nil
}

// StoreConfig converts the settings into engine store options.
func (c *Config) StoreConfig() engine.StoreConfig {
	sc := engine.DefaultStoreConfig()
	sc.PlayerName = c.Game.PlayerName
	sc.StartingBalance = c.Game.StartingBalance
	sc.StartLocation = c.Game.StartLocation
	sc.Hemisphere = c.Game.Hemisphere
	sc.PriceRetention = c.Game.PriceRetention
	sc.Seed = c.Seed
	return sc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
