package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/geofarm/internal/economy"
)

// TickDay runs once per game day: price sampling, season refresh, daily report.
func (s *Store) TickDay(now time.Time) {
	prices := s.RecordMarketPrices()
	season, _ := s.RefreshSeason()

	p := s.Player()
	slog.Info("daily report",
		"time", now.Format("2006-01-02 15:04"),
		"season", season,
		"balance", economy.FormatCurrency(p.Balance),
		"net_worth", economy.FormatCurrency(s.NetWorth()),
		"level", p.Level,
		"xp", p.XP,
		"properties", len(p.Properties),
		"vehicles", len(p.Vehicles),
		"products_priced", len(prices),
	)
}

// TickWeek runs once per game week: property tax and payroll.
func (s *Store) TickWeek(now time.Time) {
	tax, err := s.CollectPropertyTax()
	if err != nil {
		slog.Error("property tax failed", "error", err)
	}
	salaries := s.PaySalaries()

	slog.Info("weekly summary",
		"time", now.Format("2006-01-02 15:04"),
		"tax", economy.FormatCurrency(tax),
		"salaries", economy.FormatCurrency(salaries),
		"balance", economy.FormatCurrency(s.Player().Balance),
	)
}
