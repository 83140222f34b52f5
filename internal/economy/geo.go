package economy

import (
	"math"
	"time"

	"github.com/talgya/geofarm/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// GameDay is the real duration of one game day.
const GameDay = time.Hour

// Biome latitude band edges (absolute degrees, lower bound inclusive).
const (
	TropicalMaxLat  = 23.5
	TemperateMaxLat = 45.0
	ColdMaxLat      = 60.0
)

// Distance returns the great-circle distance in km between two points.
func Distance(from, to model.Coordinates) float64 {
	dLat := toRad(to.Lat - from.Lat)
	dLng := toRad(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// TravelTime returns how long a trip of distanceKm takes at speedKmh.
// A non-positive speed is rejected rather than yielding an infinite trip.
func TravelTime(distanceKm, speedKmh float64) (time.Duration, error) {
	if err := nonNegative("distance", distanceKm); err != nil {
		return 0, err
	}
	if math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) || speedKmh <= 0 {
		return 0, invalid("speed", speedKmh)
	}
	return toDuration("travel time", distanceKm/speedKmh, time.Hour)
}

// FuelConsumption returns liters burned over distanceKm at rate liters/km.
func FuelConsumption(distanceKm, rate float64) (float64, error) {
	if err := nonNegative("distance", distanceKm); err != nil {
		return 0, err
	}
	if err := nonNegative("fuel rate", rate); err != nil {
		return 0, err
	}
	return distanceKm * rate, nil
}

// BiomeForLatitude partitions absolute latitude into climatic bands:
// [0, 23.5) tropical, [23.5, 45) temperate, [45, 60) cold, [60, 90] arid.
func BiomeForLatitude(lat float64) model.BiomeType {
	abs := math.Abs(lat)
	switch {
	case abs < TropicalMaxLat:
		return model.BiomeTropical
	case abs < TemperateMaxLat:
		return model.BiomeTemperate
	case abs < ColdMaxLat:
		return model.BiomeCold
	default:
		return model.BiomeArid
	}
}

// ProductionTime converts game days into real time (1 game day = 1 hour).
func ProductionTime(gameDays float64) (time.Duration, error) {
	if err := nonNegative("game days", gameDays); err != nil {
		return 0, err
	}
	return toDuration("production time", gameDays, GameDay)
}

// toDuration scales n units into a Duration, rejecting results that do
// not fit in an int64 of nanoseconds.
func toDuration(what string, n float64, unit time.Duration) (time.Duration, error) {
	ns := n * float64(unit)
	if math.IsNaN(ns) || math.IsInf(ns, 0) || ns >= math.MaxInt64 {
		return 0, invalid(what, n)
	}
	return time.Duration(ns), nil
}
