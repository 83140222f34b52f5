// Market orders and the daily price sampler.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

// CreateMarketOrder posts o as an active order. Price and quantity are not
// checked; only the side must be buy or sell.
func (s *Store) CreateMarketOrder(o model.MarketOrder) (model.MarketOrder, error) {
	if !o.Type.Valid() {
		return model.MarketOrder{}, invalidf("order type %q", o.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = model.NewID("order")
	}
	if s.orderIndex(o.ID) >= 0 {
		return model.MarketOrder{}, fmt.Errorf("order %s: %w", o.ID, ErrDuplicate)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.Status = model.OrderActive
	s.orders = append(s.orders, o)
	return o, nil
}

// FillMarketOrder settles an active order in full. Selling credits the
// balance and earns XP; buying debits it. Returns false when the order is
// missing or no longer active.
func (s *Store) FillMarketOrder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 || s.orders[i].Status != model.OrderActive {
		return false
	}
	o := &s.orders[i]
	total := o.Total()
	switch o.Type {
	case model.OrderSell:
		s.credit(model.TxSale, total,
			fmt.Sprintf("Sold %skg of %s", economy.FormatNumber(o.Quantity), o.ProductID), o.ID)
	case model.OrderBuy:
		s.debit(model.TxPurchase, total,
			fmt.Sprintf("Bought %skg of %s", economy.FormatNumber(o.Quantity), o.ProductID), o.ID)
	}
	o.Status = model.OrderFilled
	s.volume[o.ProductID] += o.Quantity

	slog.Info("order filled", "id", id, "type", o.Type, "product", o.ProductID,
		"total", economy.FormatCurrency(total))
	return true
}

// MarketOrder returns a copy of one order.
func (s *Store) MarketOrder(id string) (model.MarketOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.orderIndex(id)
	if i < 0 {
		return model.MarketOrder{}, false
	}
	return s.orders[i], true
}

// ActiveMarketOrders returns the orders still open.
func (s *Store) ActiveMarketOrders() []model.MarketOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.MarketOrder{}
	for _, o := range s.orders {
		if o.Status == model.OrderActive {
			out = append(out, o)
		}
	}
	return out
}

// RecordMarketPrices samples a price for every catalog crop. The target is
// base price × noise trend × season, jittered ±10% and held inside the
// band around the previous 24h average once history exists. Returns the
// sampled price per product.
func (s *Store) RecordMarketPrices() map[string]float64 {
	if s.catalog == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	season := SeasonAt(now, s.state.Hemisphere)
	sampled := make(map[string]float64)

	for series, crop := range s.catalog.Crops() {
		target := crop.BasePrice *
			economy.Trend(s.noise, series, now) *
			SeasonalPriceMod(season, crop.Type)
		price, err := economy.MarketPrice(s.rnd, target)
		if err != nil {
			slog.Warn("price sample skipped", "product", crop.ID, "error", err)
			continue
		}

		h, ok := s.prices[crop.ID]
		if !ok {
			h = &model.PriceHistory{ProductID: crop.ID}
			s.prices[crop.ID] = h
		}
		if len(h.Prices) > 0 {
			price = economy.ClampToBand(price, economy.Band{Min: h.MinAllowed, Max: h.MaxAllowed})
		}

		h.Prices = append(h.Prices, model.PricePoint{
			Timestamp: now,
			Price:     price,
			Volume:    s.volume[crop.ID],
		})
		h.Prices = pruneBefore(h.Prices, now.Add(-s.cfg.PriceRetention))
		h.Average24h = economy.Average24h(h.Prices, now)
		band := economy.PriceBands(h.Average24h)
		h.MinAllowed, h.MaxAllowed = band.Min, band.Max

		sampled[crop.ID] = price
	}
	clear(s.volume)

	slog.Debug("market prices recorded", "products", len(sampled), "season", season)
	return sampled
}

// PriceHistory returns a copy of one product's price history.
func (s *Store) PriceHistory(product string) (model.PriceHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.prices[product]
	if !ok {
		return model.PriceHistory{}, false
	}
	return h.Clone(), true
}

// PriceHistories returns copies of every tracked product's history.
func (s *Store) PriceHistories() map[string]model.PriceHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.PriceHistory, len(s.prices))
	for id, h := range s.prices {
		out[id] = h.Clone()
	}
	return out
}

// pruneBefore drops samples older than cutoff. Samples are in time order.
func pruneBefore(points []model.PricePoint, cutoff time.Time) []model.PricePoint {
	i := 0
	for i < len(points) && points[i].Timestamp.Before(cutoff) {
		i++
	}
	if i == 0 {
		return points
	}
	return append([]model.PricePoint(nil), points[i:]...)
}

// orderIndex returns the slice index of id or -1. Caller must hold mu.
func (s *Store) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}
