// Fleet management: vehicle registration, dispatch and refuelling.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

// AddVehicle registers v with the player's fleet. Vehicles are not debited.
func (s *Store) AddVehicle(v model.Vehicle) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = model.NewID("veh")
	}
	if s.vehicleIndex(v.ID) >= 0 {
		return model.Vehicle{}, fmt.Errorf("vehicle %s: %w", v.ID, ErrDuplicate)
	}
	if v.Status == "" {
		v.Status = model.VehicleIdle
	}
	if err := validateVehicle(v); err != nil {
		return model.Vehicle{}, err
	}

	v = v.Clone()
	s.vehicles = append(s.vehicles, v)
	s.player.Vehicles = append(s.player.Vehicles, v.ID)
	slog.Info("vehicle added", "id", v.ID, "type", v.Type, "tier", v.Tier)
	return v.Clone(), nil
}

// UpdateVehicle applies a partial update, rejecting any result that breaks
// a vehicle invariant.
func (s *Store) UpdateVehicle(id string, patch model.VehiclePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.vehicleIndex(id)
	if i < 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	next := s.vehicles[i].Clone()
	patch.Apply(&next)
	if err := validateVehicle(next); err != nil {
		return err
	}
	s.vehicles[i] = next
	return nil
}

// Vehicle returns a copy of one vehicle.
func (s *Store) Vehicle(id string) (model.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.vehicleIndex(id)
	if i < 0 {
		return model.Vehicle{}, false
	}
	return s.vehicles[i].Clone(), true
}

// Vehicles returns copies of the whole fleet.
func (s *Store) Vehicles() []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Vehicle, len(s.vehicles))
	for i, v := range s.vehicles {
		out[i] = v.Clone()
	}
	return out
}

// DispatchVehicle sends an idle vehicle from its location to dest. Fuel for
// the trip is burned up front; the route and traveling status are set together.
func (s *Store) DispatchVehicle(id string, dest model.Coordinates, cargoID string) (model.Route, error) {
	if !validCoordinates(dest) {
		return model.Route{}, invalidf("destination %v", dest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.vehicleIndex(id)
	if i < 0 {
		return model.Route{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	v := &s.vehicles[i]
	if v.Status != model.VehicleIdle {
		return model.Route{}, fmt.Errorf("vehicle %s is %s: %w", id, v.Status, ErrVehicleBusy)
	}

	distance := economy.Distance(v.Location, dest)
	travel, err := economy.TravelTime(distance, v.Speed)
	if err != nil {
		return model.Route{}, fmt.Errorf("dispatch %s: %w", id, err)
	}
	fuel, err := economy.FuelConsumption(distance, v.FuelConsumption)
	if err != nil {
		return model.Route{}, fmt.Errorf("dispatch %s: %w", id, err)
	}
	if fuel > v.CurrentFuel {
		return model.Route{}, fmt.Errorf("dispatch %s needs %.1f L, has %.1f L: %w",
			id, fuel, v.CurrentFuel, ErrInsufficientFuel)
	}

	now := s.now()
	route := model.Route{
		ID:               model.NewID("route"),
		From:             v.Location,
		To:               dest,
		Distance:         distance,
		StartTime:        now,
		EstimatedArrival: now.Add(travel),
		CargoID:          cargoID,
	}
	v.CurrentFuel -= fuel
	v.Status = model.VehicleTraveling
	v.CurrentRoute = &route

	slog.Info("vehicle dispatched",
		"id", id,
		"distance_km", economy.FormatNumber(distance),
		"eta", route.EstimatedArrival,
		"fuel", fuel,
	)
	return route, nil
}

// RefuelVehicle buys up to liters of fuel, capped at the free tank volume,
// and records a fuel expense. Returns the liters actually added.
func (s *Store) RefuelVehicle(id string, liters, pricePerLiter float64) (float64, error) {
	if badAmount(liters) || badAmount(pricePerLiter) {
		return 0, invalidf("refuel %v L at %v", liters, pricePerLiter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.vehicleIndex(id)
	if i < 0 {
		return 0, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	v := &s.vehicles[i]
	added := min(liters, v.FuelCapacity-v.CurrentFuel)
	if added <= 0 {
		return 0, nil
	}
	v.CurrentFuel += added
	cost := added * pricePerLiter
	if cost > 0 {
		s.debit(model.TxFuel, cost, fmt.Sprintf("Fuel for %s (%.1f L)", v.Name, added), v.ID)
	}
	return added, nil
}

// vehicleIndex returns the slice index of id or -1. Caller must hold mu.
func (s *Store) vehicleIndex(id string) int {
	for i := range s.vehicles {
		if s.vehicles[i].ID == id {
			return i
		}
	}
	return -1
}

func validateVehicle(v model.Vehicle) error {
	switch {
	case !v.Type.Valid():
		return invalidf("vehicle type %q", v.Type)
	case !v.Status.Valid():
		return invalidf("vehicle status %q", v.Status)
	case v.Tier < 1 || v.Tier > 5:
		return invalidf("vehicle tier %d", v.Tier)
	case badAmount(v.Capacity):
		return invalidf("capacity %v", v.Capacity)
	case badAmount(v.Speed):
		return invalidf("speed %v", v.Speed)
	case badAmount(v.FuelConsumption):
		return invalidf("fuel consumption %v", v.FuelConsumption)
	case badAmount(v.FuelCapacity):
		return invalidf("fuel capacity %v", v.FuelCapacity)
	case badAmount(v.CurrentFuel) || v.CurrentFuel > v.FuelCapacity:
		return invalidf("fuel %v of %v", v.CurrentFuel, v.FuelCapacity)
	case v.Condition < 0 || v.Condition > 100:
		return invalidf("condition %v", v.Condition)
	case (v.Status == model.VehicleTraveling) != (v.CurrentRoute != nil):
		return invalidf("vehicle %s: route must exist exactly while traveling", v.ID)
	case !validCoordinates(v.Location):
		return invalidf("location %v", v.Location)
	}
	return nil
}
