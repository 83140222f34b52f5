// Command geofarm runs the GeoFarm Tycoon simulation server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/geofarm/internal/api"
	"github.com/talgya/geofarm/internal/catalog"
	"github.com/talgya/geofarm/internal/config"
	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/engine"
	"github.com/talgya/geofarm/internal/entropy"
	"github.com/talgya/geofarm/internal/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("GeoFarm Tycoon simulation server",
		"tick_interval", cfg.TickInterval,
		"game_speed", cfg.Game.GameSpeed,
		"hemisphere", cfg.Game.Hemisphere,
	)

	// ── Catalog ───────────────────────────────────────────────────────
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "crops", len(cat.Crops()), "biomes", len(cat.Biomes()))

	// ── Ledger ────────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.LedgerPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		slog.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("ledger opened", "path", cfg.LedgerPath)

	// ── Store ─────────────────────────────────────────────────────────
	clock := engine.NewScaledClock(engine.RealClock{}, cfg.Game.GameSpeed)
	store := engine.NewStore(cfg.StoreConfig(), cat, clock, entropy.NewSeeded(cfg.Seed))
	journal := ledger.NewJournal(db, store)

	// Seed the price charts so the market has a band from the first minute.
	store.RecordMarketPrices()
	if err := db.SaveMeta("started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("could not record start time", "error", err)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("GEOFARM_ADMIN_KEY not set, POST actions will be disabled")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := api.NewHub(nil)
	go hub.Run(ctx)

	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval

	// Wire tick callbacks. Ticks with transitions are pushed to clients.
	eng.OnTick = func() engine.TickReport {
		r := store.AdvanceTime()
		if r.Changed() {
			hub.Publish("tick", r)
		}
		return r
	}
	eng.OnDay = func(now time.Time) {
		store.TickDay(now)
		if err := journal.Flush(); err != nil {
			slog.Error("daily journal flush failed", "error", err)
		}
		hub.Publish("day", store.GameState())
	}
	eng.OnWeek = store.TickWeek

	apiServer := &api.Server{
		Store:       store,
		Eng:         eng,
		Ledger:      db,
		Catalog:     cat,
		Hub:         hub,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	httpServer := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	p := store.Player()
	fmt.Printf("\n%s starts with %s in %s season.\n",
		p.Name, economy.FormatCurrency(p.Balance), store.GameState().Season)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Final flush on shutdown.
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	cancel()

	if err := journal.Flush(); err != nil {
		slog.Error("final journal flush failed", "error", err)
	}
	fmt.Printf("Simulation stopped after %s ticks. Ledger saved to %s.\n",
		humanize.Comma(int64(eng.Ticks())), cfg.LedgerPath)
}
