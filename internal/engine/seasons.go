// Seasons and their effect on crop prices.
package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/geofarm/internal/model"
)

// SeasonAt returns the meteorological season of t in the given hemisphere.
func SeasonAt(t time.Time, h model.Hemisphere) model.Season {
	var s model.Season
	switch t.UTC().Month() {
	case time.March, time.April, time.May:
		s = model.SeasonSpring
	case time.June, time.July, time.August:
		s = model.SeasonSummer
	case time.September, time.October, time.November:
		s = model.SeasonFall
	default:
		s = model.SeasonWinter
	}
	if h == model.HemisphereSouth {
		return opposite(s)
	}
	return s
}

func opposite(s model.Season) model.Season {
	switch s {
	case model.SeasonSpring:
		return model.SeasonFall
	case model.SeasonSummer:
		return model.SeasonWinter
	case model.SeasonFall:
		return model.SeasonSpring
	default:
		return model.SeasonSummer
	}
}

// SeasonalPriceMod returns a price multiplier for a crop in a season.
// Prices dip around each crop's harvest and climb when it is scarce.
func SeasonalPriceMod(season model.Season, crop model.CropType) float64 {
	switch season {
	case model.SeasonWinter:
		switch crop {
		case model.CropCoffee:
			return 1.15
		case model.CropWheat, model.CropCorn:
			return 1.1
		default:
			return 1.05
		}
	case model.SeasonSpring:
		switch crop {
		case model.CropWheat:
			return 1.05
		case model.CropSugarcane:
			return 0.95
		default:
			return 1.0
		}
	case model.SeasonSummer:
		switch crop {
		case model.CropWheat:
			return 0.9 // Harvest
		case model.CropCorn:
			return 0.95
		default:
			return 1.0
		}
	case model.SeasonFall:
		switch crop {
		case model.CropCorn, model.CropSoy:
			return 0.85 // Harvest
		case model.CropSugarcane, model.CropCoffee:
			return 0.95
		default:
			return 1.0
		}
	}
	return 1.0
}

// RefreshSeason recomputes the season from the current game time.
// Returns the season and whether it changed.
func (s *Store) RefreshSeason() (model.Season, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season := SeasonAt(s.state.CurrentTime, s.state.Hemisphere)
	if season == s.state.Season {
		return season, false
	}
	prev := s.state.Season
	s.state.Season = season
	slog.Info("season changed", "from", prev, "to", season)
	return season, true
}
