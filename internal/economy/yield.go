package economy

import "github.com/talgya/geofarm/internal/model"

// Yield returns the harvest in kg for a crop grown on hectares of a biome.
// A crop type without a biome entry grows at multiplier 1.0.
func Yield(crop model.Crop, biome model.Biome, hectares float64) (float64, error) {
	if err := nonNegative("hectares", hectares); err != nil {
		return 0, err
	}
	return crop.BaseYield * hectares * biome.Bonus(crop.Type), nil
}
