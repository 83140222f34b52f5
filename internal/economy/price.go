package economy

import (
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/geofarm/internal/entropy"
	"github.com/talgya/geofarm/internal/model"
)

// Market fluctuation and trading band limits.
const (
	FluctuationMin = 0.9
	FluctuationMax = 1.1
	BandFloor      = 0.8
	BandCeiling    = 1.2

	trendAmplitude = 0.15
)

// MarketPrice applies a uniform multiplier in [0.9, 1.1] drawn from src.
func MarketPrice(src entropy.Source, basePrice float64) (float64, error) {
	if err := nonNegative("base price", basePrice); err != nil {
		return 0, err
	}
	fluctuation := FluctuationMin + src.Float()*(FluctuationMax-FluctuationMin)
	return basePrice * fluctuation, nil
}

// Band is the allowed trading range around an average price.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceBands returns the band [avg×0.8, avg×1.2].
func PriceBands(averagePrice float64) Band {
	return Band{
		Min: averagePrice * BandFloor,
		Max: averagePrice * BandCeiling,
	}
}

// ClampToBand bounds price by the band's floor and ceiling.
func ClampToBand(price float64, b Band) float64 {
	if price < b.Min {
		return b.Min
	}
	if price > b.Max {
		return b.Max
	}
	return price
}

// Trend returns a slow market drift multiplier in [0.85, 1.15] for one
// product series at time t. Series are decorrelated by offsetting the
// noise plane; the drift varies smoothly over game days.
func Trend(noise opensimplex.Noise, series int, t time.Time) float64 {
	days := float64(t.UnixMilli()) / float64(GameDay.Milliseconds())
	n := octaveNoise(noise, float64(series)*17.31, days*0.05, 3, 1.0, 0.5)
	return math.Min(1+trendAmplitude, math.Max(1-trendAmplitude, 1-trendAmplitude+2*trendAmplitude*n))
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// The noise must be normalized to [0, 1).
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Average24h returns the mean price of samples taken in the 24 hours up to
// now. It falls back to the latest sample when none is that recent.
func Average24h(points []model.PricePoint, now time.Time) float64 {
	cutoff := now.Add(-24 * time.Hour)
	sum, n := 0.0, 0
	for _, p := range points {
		if p.Timestamp.Before(cutoff) || p.Timestamp.After(now) {
			continue
		}
		sum += p.Price
		n++
	}
	if n == 0 {
		if len(points) == 0 {
			return 0
		}
		return points[len(points)-1].Price
	}
	return sum / float64(n)
}
