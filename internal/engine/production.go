// Crop production: planting, growth tracking and harvest into storage.
package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

// harvestQuality is the quality of freshly harvested goods.
const harvestQuality = 100

// StartProduction records p as given. A missing ID or status is filled in.
func (s *Store) StartProduction(p model.Production) (model.Production, error) {
	if p.Status == "" {
		p.Status = model.ProductionGrowing
	}
	switch p.Status {
	case model.ProductionGrowing, model.ProductionReady, model.ProductionHarvested:
	default:
		return model.Production{}, invalidf("production status %q", p.Status)
	}
	if p.EndTime.Before(p.StartTime) {
		return model.Production{}, invalidf("production ends before it starts")
	}
	if badAmount(p.Quantity) {
		return model.Production{}, invalidf("quantity %v", p.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = model.NewID("prod")
	}
	if s.productionIndex(p.ID) >= 0 {
		return model.Production{}, fmt.Errorf("production %s: %w", p.ID, ErrDuplicate)
	}
	s.productions = append(s.productions, p)
	return p, nil
}

// PlantCrop starts a growing production of cropID across the property's
// hectares. Expected quantity and duration come from the catalog crop and
// the property's biome.
func (s *Store) PlantCrop(propertyID, cropID string) (model.Production, error) {
	if s.catalog == nil {
		return model.Production{}, fmt.Errorf("plant %s: no catalog loaded", cropID)
	}
	crop, ok := s.catalog.Crop(cropID)
	if !ok {
		return model.Production{}, fmt.Errorf("crop %s: %w", cropID, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(propertyID)
	if i < 0 {
		return model.Production{}, fmt.Errorf("property %s: %w", propertyID, ErrNotFound)
	}
	prop := s.properties[i]
	if prop.Hectares <= 0 {
		return model.Production{}, invalidf("property %s has no planted area", propertyID)
	}

	biome, ok := s.catalog.Biome(prop.Biome)
	if !ok {
		biome, _ = s.catalog.BiomeByType(economy.BiomeForLatitude(prop.Coordinates.Lat))
	}
	quantity, err := economy.Yield(crop, biome, prop.Hectares)
	if err != nil {
		return model.Production{}, fmt.Errorf("plant %s: %w", cropID, err)
	}
	growth, err := economy.ProductionTime(crop.GrowthDays)
	if err != nil {
		return model.Production{}, fmt.Errorf("plant %s: %w", cropID, err)
	}

	now := s.now()
	p := model.Production{
		ID:         model.NewID("prod"),
		PropertyID: propertyID,
		CropID:     cropID,
		StartTime:  now,
		EndTime:    now.Add(growth),
		Quantity:   quantity,
		Status:     model.ProductionGrowing,
	}
	s.productions = append(s.productions, p)

	slog.Info("crop planted",
		"property", propertyID,
		"crop", cropID,
		"biome", biome.ID,
		"expected_kg", economy.FormatNumber(quantity),
		"ready_at", p.EndTime,
	)
	return p, nil
}

// HarvestResult reports where a harvest went.
type HarvestResult struct {
	Production model.Production `json:"production"`
	Stored     float64          `json:"stored"`  // kg moved into property storage
	Spilled    float64          `json:"spilled"` // kg that did not fit
}

// HarvestProduction marks a production harvested and moves its quantity
// into the property's storage up to free capacity. Returns false when the
// production is missing or already harvested.
func (s *Store) HarvestProduction(id string) (HarvestResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productionIndex(id)
	if i < 0 {
		return HarvestResult{}, false
	}
	p := &s.productions[i]
	if p.Status == model.ProductionHarvested {
		return HarvestResult{Production: *p}, false
	}
	p.Status = model.ProductionHarvested

	res := HarvestResult{Production: *p, Spilled: p.Quantity}
	if j := s.propertyIndex(p.PropertyID); j >= 0 {
		res.Stored = storeGoods(&s.properties[j].Storage, p.CropID, p.Quantity, harvestQuality)
		res.Spilled = p.Quantity - res.Stored
	}

	slog.Info("production harvested",
		"id", id,
		"crop", p.CropID,
		"stored_kg", economy.FormatNumber(res.Stored),
		"spilled_kg", economy.FormatNumber(res.Spilled),
	)
	return res, true
}

// Production returns a copy of one production.
func (s *Store) Production(id string) (model.Production, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productionIndex(id)
	if i < 0 {
		return model.Production{}, false
	}
	return s.productions[i], true
}

// Productions returns every production.
func (s *Store) Productions() []model.Production {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.productions)
}

// storeGoods adds up to qty of product into st without exceeding capacity.
// Quality of an existing stack becomes the quantity-weighted mean.
func storeGoods(st *model.Storage, product string, qty, quality float64) float64 {
	add := min(qty, st.Free())
	if add <= 0 {
		return 0
	}
	for i := range st.Items {
		it := &st.Items[i]
		if it.ProductID != product {
			continue
		}
		total := it.Quantity + add
		it.Quality = (it.Quality*it.Quantity + quality*add) / total
		it.Quantity = total
		return add
	}
	st.Items = append(st.Items, model.StorageItem{ProductID: product, Quantity: add, Quality: quality})
	return add
}

// productionIndex returns the slice index of id or -1. Caller must hold mu.
func (s *Store) productionIndex(id string) int {
	for i := range s.productions {
		if s.productions[i].ID == id {
			return i
		}
	}
	return -1
}
