package economy

import (
	"math"
	"testing"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/geofarm/internal/entropy"
	"github.com/talgya/geofarm/internal/model"
)

var (
	saoPaulo = model.Coordinates{Lat: -23.5505, Lng: -46.6333}
	rio      = model.Coordinates{Lat: -22.9068, Lng: -43.1729}
)

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	points := []model.Coordinates{saoPaulo, rio, {Lat: 0, Lng: 0}, {Lat: 89.9, Lng: 179.9}, {Lat: -60, Lng: 10}}
	for _, a := range points {
		assert.Equal(t, 0.0, Distance(a, a))
		for _, b := range points {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
			assert.GreaterOrEqual(t, Distance(a, b), 0.0)
		}
	}
}

func TestDistanceKnownRoute(t *testing.T) {
	// São Paulo to Rio de Janeiro is roughly 360 km as the crow flies.
	assert.InDelta(t, 361, Distance(saoPaulo, rio), 5)

	// A quarter of the equator.
	quarter := Distance(model.Coordinates{}, model.Coordinates{Lng: 90})
	assert.InDelta(t, math.Pi*EarthRadiusKm/2, quarter, 1e-6)
}

func TestDistanceAntipodal(t *testing.T) {
	half := math.Pi * EarthRadiusKm
	for lat := -89.9; lat <= 89.9; lat += 0.7 {
		for lng := -180.0; lng < 0; lng += 3.1 {
			from := model.Coordinates{Lat: lat, Lng: lng}
			to := model.Coordinates{Lat: -lat, Lng: lng + 180}
			d := Distance(from, to)
			require.False(t, math.IsNaN(d), "%v -> %v", from, to)
			assert.InDelta(t, half, d, 1e-2, "%v -> %v", from, to)
		}
	}
	d := Distance(model.Coordinates{Lat: -88.3, Lng: -179}, model.Coordinates{Lat: 88.3, Lng: 1})
	assert.InDelta(t, half, d, 1e-2)
}

func TestTravelTime(t *testing.T) {
	d, err := TravelTime(100, 50)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, d)

	d, err = TravelTime(0, 80)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}

func TestTravelTimeIsLinearInDistance(t *testing.T) {
	base, err := TravelTime(10, 80)
	require.NoError(t, err)
	for _, k := range []float64{2, 3, 7.5} {
		d, err := TravelTime(10*k, 80)
		require.NoError(t, err)
		assert.InDelta(t, float64(base)*k, float64(d), 1)
	}
}

func TestTravelTimeRejectsNonPositiveSpeed(t *testing.T) {
	for _, speed := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := TravelTime(100, speed)
		assert.ErrorIs(t, err, ErrInvalidInput, "speed %v", speed)
	}
	_, err := TravelTime(-1, 50)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTravelTimeRejectsOverflow(t *testing.T) {
	_, err := TravelTime(20000, 0.001)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = TravelTime(math.Inf(1), 80)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Just under the ~292 year limit still works.
	d, err := TravelTime(2_000_000, 1)
	require.NoError(t, err)
	assert.Positive(t, d)
}

func TestFuelConsumption(t *testing.T) {
	fuel, err := FuelConsumption(250, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 75, fuel, 1e-9)

	_, err = FuelConsumption(-1, 0.3)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = FuelConsumption(10, -0.3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBiomeForLatitudeBoundaries(t *testing.T) {
	cases := []struct {
		lat  float64
		want model.BiomeType
	}{
		{0, model.BiomeTropical},
		{23.49, model.BiomeTropical},
		{23.5, model.BiomeTemperate},
		{-23.5, model.BiomeTemperate},
		{44.99, model.BiomeTemperate},
		{45, model.BiomeCold},
		{-45, model.BiomeCold},
		{59.99, model.BiomeCold},
		{60, model.BiomeArid},
		{-90, model.BiomeArid},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BiomeForLatitude(c.lat), "lat %v", c.lat)
	}
}

func TestYield(t *testing.T) {
	coffee := model.Crop{ID: "coffee", Type: model.CropCoffee, BaseYield: 1500}
	tropical := model.Biome{Bonuses: map[model.CropType]float64{model.CropCoffee: 1.5}}

	y, err := Yield(coffee, tropical, 10)
	require.NoError(t, err)
	assert.InDelta(t, 22500, y, 1e-9)

	// Linear in hectares.
	y2, err := Yield(coffee, tropical, 20)
	require.NoError(t, err)
	assert.InDelta(t, 2*y, y2, 1e-9)

	// Missing bonus entry is exactly 1.0.
	soy := model.Crop{ID: "soy", Type: model.CropSoy, BaseYield: 2500}
	y, err = Yield(soy, tropical, 4)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, y)

	_, err = Yield(soy, tropical, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductionTime(t *testing.T) {
	d, err := ProductionTime(90)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Hour, d)

	_, err = ProductionTime(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ProductionTime(1e9)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarketPriceBounds(t *testing.T) {
	p, err := MarketPrice(entropy.Fixed(0), 10)
	require.NoError(t, err)
	assert.InDelta(t, 9, p, 1e-9)

	p, err = MarketPrice(entropy.Fixed(0.5), 10)
	require.NoError(t, err)
	assert.InDelta(t, 10, p, 1e-9)

	src := entropy.NewSeeded(3)
	for i := 0; i < 200; i++ {
		p, err := MarketPrice(src, 2.5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 2.5*FluctuationMin)
		assert.LessOrEqual(t, p, 2.5*FluctuationMax)
	}

	_, err = MarketPrice(src, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPriceBands(t *testing.T) {
	for _, avg := range []float64{0, 1, 2.5, 1000} {
		b := PriceBands(avg)
		assert.Equal(t, avg*0.8, b.Min)
		assert.Equal(t, avg*1.2, b.Max)
	}
	b := PriceBands(10)
	assert.Equal(t, 8.0, ClampToBand(1, b))
	assert.Equal(t, 12.0, ClampToBand(50, b))
	assert.Equal(t, 10.5, ClampToBand(10.5, b))
}

func TestPropertyTaxBrackets(t *testing.T) {
	cases := []struct {
		count int
		rate  float64
	}{
		{0, 0.01},
		{1, 0.01},
		{2, 0.01},
		{3, 0.02},
		{5, 0.02},
		{6, 0.03},
		{10, 0.03},
		{11, 0.05},
		{40, 0.05},
	}
	for _, c := range cases {
		tax, err := PropertyTax(c.count, 100000)
		require.NoError(t, err)
		assert.InDelta(t, 100000*c.rate, tax, 1e-9, "count %d", c.count)
	}

	_, err := PropertyTax(-1, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = PropertyTax(1, -100)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestXPFromTransaction(t *testing.T) {
	assert.Equal(t, uint64(0), XPFromTransaction(999))
	assert.Equal(t, uint64(1), XPFromTransaction(1000))
	assert.Equal(t, uint64(12), XPFromTransaction(12999.99))
	assert.Equal(t, uint64(0), XPFromTransaction(-50000))
	assert.Equal(t, uint64(0), XPFromTransaction(0))
	assert.Equal(t, uint64(MaxXPGrant), XPFromTransaction(1e300))
	assert.Equal(t, uint64(MaxXPGrant), XPFromTransaction(math.Inf(1)))
}

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(99))
	assert.Equal(t, 2, LevelFromXP(100))
	assert.Equal(t, 3, LevelFromXP(400))
	assert.Equal(t, 11, LevelFromXP(10000))

	prev := LevelFromXP(0)
	for xp := uint64(0); xp < 50000; xp += 37 {
		lvl := LevelFromXP(xp)
		assert.GreaterOrEqual(t, lvl, prev)
		assert.GreaterOrEqual(t, lvl, 1)
		prev = lvl
	}
}

func TestTrendStaysInRange(t *testing.T) {
	noise := opensimplex.NewNormalized(42)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for series := 0; series < 5; series++ {
		for h := 0; h < 500; h += 7 {
			tr := Trend(noise, series, start.Add(time.Duration(h)*time.Hour))
			assert.GreaterOrEqual(t, tr, 0.85-1e-9)
			assert.LessOrEqual(t, tr, 1.15+1e-9)
		}
	}
	// Deterministic for the same seed.
	other := opensimplex.NewNormalized(42)
	assert.Equal(t, Trend(noise, 2, start), Trend(other, 2, start))
}

func TestAverage24h(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	points := []model.PricePoint{
		{Timestamp: now.Add(-48 * time.Hour), Price: 100},
		{Timestamp: now.Add(-2 * time.Hour), Price: 2},
		{Timestamp: now.Add(-1 * time.Hour), Price: 4},
	}
	assert.Equal(t, 3.0, Average24h(points, now))

	stale := points[:1]
	assert.Equal(t, 100.0, Average24h(stale, now))
	assert.Equal(t, 0.0, Average24h(nil, now))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatCurrency(1234.56))
	assert.Equal(t, "R$ 50.000,00", FormatCurrency(50000))
	assert.Equal(t, "-R$ 20.000,00", FormatCurrency(-20000))
	assert.Equal(t, "1.234.567", FormatNumber(1234567))
}

func TestPropertyName(t *testing.T) {
	assert.Equal(t, "Fazenda Verde", PropertyName(entropy.Fixed(0)))
	assert.Equal(t, "Granja Esperança", PropertyName(entropy.Fixed(0.99)))
}
