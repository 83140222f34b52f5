// Property purchases, updates and the weekly property tax.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

// AddProperty buys p for the player. Missing ID, name, owner, type, biome
// and purchase date are filled in; the purchase price is debited.
func (s *Store) AddProperty(p model.Property) (model.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = model.NewID("prop")
	}
	if s.propertyIndex(p.ID) >= 0 {
		return model.Property{}, fmt.Errorf("property %s: %w", p.ID, ErrDuplicate)
	}
	if p.Name == "" {
		p.Name = economy.PropertyName(s.rnd)
	}
	if p.Type == "" {
		p.Type = model.PropertyFarm
	}
	if p.Owner == "" {
		p.Owner = s.player.ID
	}
	if p.Biome == "" {
		p.Biome = s.biomeFor(p.Coordinates)
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = s.now()
	}
	if err := s.validateProperty(p); err != nil {
		return model.Property{}, err
	}

	p = p.Clone()
	s.properties = append(s.properties, p)
	s.player.Properties = append(s.player.Properties, p.ID)
	s.debit(model.TxPurchase, p.PurchasePrice, "Purchased "+p.Name, p.ID)

	slog.Info("property purchased",
		"id", p.ID,
		"name", p.Name,
		"price", economy.FormatCurrency(p.PurchasePrice),
		"biome", p.Biome,
	)
	return p.Clone(), nil
}

// UpdateProperty applies a partial update. The patch is checked against
// every property invariant before it is committed.
func (s *Store) UpdateProperty(id string, patch model.PropertyPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(id)
	if i < 0 {
		return fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	next := s.properties[i].Clone()
	patch.Apply(&next)
	if err := s.validateProperty(next); err != nil {
		return err
	}
	s.properties[i] = next
	return nil
}

// Property returns a copy of one property.
func (s *Store) Property(id string) (model.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.propertyIndex(id)
	if i < 0 {
		return model.Property{}, false
	}
	return s.properties[i].Clone(), true
}

// Properties returns copies of every owned property.
func (s *Store) Properties() []model.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Property, len(s.properties))
	for i, p := range s.properties {
		out[i] = p.Clone()
	}
	return out
}

// CollectPropertyTax charges the bracketed rate on the summed purchase
// price of every owned property. Returns the amount charged.
func (s *Store) CollectPropertyTax() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.properties)
	if count == 0 {
		return 0, nil
	}
	value := 0.0
	for _, p := range s.properties {
		value += p.PurchasePrice
	}
	tax, err := economy.PropertyTax(count, value)
	if err != nil {
		return 0, fmt.Errorf("property tax: %w", err)
	}
	if tax <= 0 {
		return 0, nil
	}
	s.debit(model.TxTax, tax, fmt.Sprintf("Property tax (%d properties)", count), "")
	slog.Info("property tax collected",
		"properties", count,
		"rate", economy.TaxRate(count),
		"amount", economy.FormatCurrency(tax),
	)
	return tax, nil
}

// propertyIndex returns the slice index of id or -1. Caller must hold mu.
func (s *Store) propertyIndex(id string) int {
	for i := range s.properties {
		if s.properties[i].ID == id {
			return i
		}
	}
	return -1
}

// biomeFor picks the catalog biome matching the latitude band.
func (s *Store) biomeFor(c model.Coordinates) string {
	bt := economy.BiomeForLatitude(c.Lat)
	if s.catalog != nil {
		if b, ok := s.catalog.BiomeByType(bt); ok {
			return b.ID
		}
	}
	return string(bt)
}

func (s *Store) validateProperty(p model.Property) error {
	switch {
	case !p.Type.Valid():
		return invalidf("property type %q", p.Type)
	case p.Tier < 1 || p.Tier > 5:
		return invalidf("property tier %d", p.Tier)
	case badAmount(p.PurchasePrice):
		return invalidf("purchase price %v", p.PurchasePrice)
	case badAmount(p.Hectares):
		return invalidf("hectares %v", p.Hectares)
	case p.Slots.Total < 0 || p.Slots.Used < 0 || p.Slots.Used > p.Slots.Total:
		return invalidf("slots %d/%d", p.Slots.Used, p.Slots.Total)
	case badAmount(p.Storage.Capacity):
		return invalidf("storage capacity %v", p.Storage.Capacity)
	case p.Storage.Used() > p.Storage.Capacity:
		return invalidf("storage holds %v over capacity %v", p.Storage.Used(), p.Storage.Capacity)
	case !validCoordinates(p.Coordinates):
		return invalidf("coordinates %v", p.Coordinates)
	}
	for _, it := range p.Storage.Items {
		if badAmount(it.Quantity) || it.Quality < 0 || it.Quality > 100 {
			return invalidf("storage item %s", it.ProductID)
		}
	}
	for _, b := range p.Buildings {
		if b.Condition < 0 || b.Condition > 100 {
			return invalidf("building %s condition %v", b.ID, b.Condition)
		}
	}
	if s.catalog != nil {
		if _, ok := s.catalog.Biome(p.Biome); !ok {
			return invalidf("unknown biome %q", p.Biome)
		}
	}
	return nil
}

// badAmount rejects NaN, infinities and negatives.
func badAmount(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func validCoordinates(c model.Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
