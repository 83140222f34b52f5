package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

func TestAddVehicle(t *testing.T) {
	s, _ := newTestStore(t)
	v, err := s.AddVehicle(testTruck("truck-1"))
	require.NoError(t, err)
	assert.Equal(t, model.VehicleIdle, v.Status)
	assert.Contains(t, s.Player().Vehicles, "truck-1")
	assert.Equal(t, 50000.0, s.Player().Balance)
	assert.Empty(t, s.Transactions())

	bad := testTruck("truck-2")
	bad.CurrentFuel = 500
	_, err = s.AddVehicle(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = testTruck("truck-3")
	bad.Status = model.VehicleTraveling
	_, err = s.AddVehicle(bad)
	assert.ErrorIs(t, err, ErrInvalidInput, "traveling without a route")
}

func TestUpdateVehicle(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddVehicle(testTruck("truck-1"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateVehicle("truck-1", model.VehiclePatch{Condition: ptr(55.0)}))
	v, _ := s.Vehicle("truck-1")
	assert.Equal(t, 55.0, v.Condition)

	err = s.UpdateVehicle("truck-1", model.VehiclePatch{Status: ptr(model.VehicleTraveling)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.UpdateVehicle("truck-1", model.VehiclePatch{Condition: ptr(101.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.UpdateVehicle("ghost", model.VehiclePatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchAndArrive(t *testing.T) {
	s, clock := newTestStore(t)
	_, err := s.AddVehicle(testTruck("truck-1"))
	require.NoError(t, err)

	route, err := s.DispatchVehicle("truck-1", rio, "cargo-1")
	require.NoError(t, err)
	distance := economy.Distance(saoPaulo, rio)
	assert.InDelta(t, distance, route.Distance, 1e-9)
	travel, err := economy.TravelTime(distance, 80)
	require.NoError(t, err)
	assert.Equal(t, start.Add(travel), route.EstimatedArrival)

	v, _ := s.Vehicle("truck-1")
	assert.Equal(t, model.VehicleTraveling, v.Status)
	require.NotNil(t, v.CurrentRoute)
	assert.InDelta(t, 200-distance*0.3, v.CurrentFuel, 1e-9)

	_, err = s.DispatchVehicle("truck-1", saoPaulo, "")
	assert.ErrorIs(t, err, ErrVehicleBusy)

	clock.Set(route.EstimatedArrival)
	r := s.AdvanceTime()
	assert.Equal(t, []string{"truck-1"}, r.ArrivedVehicles)
	v, _ = s.Vehicle("truck-1")
	assert.Equal(t, rio, v.Location)
	assert.Equal(t, model.VehicleIdle, v.Status)

	// Not enough left for the trip back.
	_, err = s.DispatchVehicle("truck-1", saoPaulo, "")
	assert.ErrorIs(t, err, ErrInsufficientFuel)
	v, _ = s.Vehicle("truck-1")
	assert.Equal(t, model.VehicleIdle, v.Status)
}

func TestDispatchRejectsStationaryVehicle(t *testing.T) {
	s, _ := newTestStore(t)
	v := testTruck("parked")
	v.Speed = 0
	_, err := s.AddVehicle(v)
	require.NoError(t, err)

	_, err = s.DispatchVehicle("parked", rio, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.DispatchVehicle("ghost", rio, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchAntipodal(t *testing.T) {
	s, clock := newTestStore(t)
	v := testTruck("plane")
	v.Location = model.Coordinates{Lat: -88.3, Lng: -179}
	v.FuelConsumption = 0
	_, err := s.AddVehicle(v)
	require.NoError(t, err)

	route, err := s.DispatchVehicle("plane", model.Coordinates{Lat: 88.3, Lng: 1}, "")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*economy.EarthRadiusKm, route.Distance, 1e-2)
	assert.True(t, route.EstimatedArrival.After(route.StartTime))

	clock.Advance(time.Second)
	assert.Empty(t, s.AdvanceTime().ArrivedVehicles)
}

func TestDispatchRejectsUnrepresentableTrip(t *testing.T) {
	s, clock := newTestStore(t)
	v := testTruck("slow")
	v.Speed = 0.001
	v.FuelConsumption = 0
	_, err := s.AddVehicle(v)
	require.NoError(t, err)

	_, err = s.DispatchVehicle("slow", model.Coordinates{Lat: 40.7, Lng: -74}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	got, _ := s.Vehicle("slow")
	assert.Equal(t, model.VehicleIdle, got.Status)
	assert.Nil(t, got.CurrentRoute)

	clock.Advance(time.Second)
	assert.Empty(t, s.AdvanceTime().ArrivedVehicles)
}

func TestRefuelVehicle(t *testing.T) {
	s, _ := newTestStore(t)
	v := testTruck("truck-1")
	v.CurrentFuel = 150
	_, err := s.AddVehicle(v)
	require.NoError(t, err)

	added, err := s.RefuelVehicle("truck-1", 100, 6)
	require.NoError(t, err)
	assert.Equal(t, 50.0, added)
	got, _ := s.Vehicle("truck-1")
	assert.Equal(t, 200.0, got.CurrentFuel)
	assert.Equal(t, 49700.0, s.Player().Balance)

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, model.TxFuel, txs[0].Type)
	assert.Equal(t, -300.0, txs[0].Amount)

	added, err = s.RefuelVehicle("truck-1", 10, 6)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, s.Transactions(), 1)

	_, err = s.RefuelVehicle("truck-1", -5, 6)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
