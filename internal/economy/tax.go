package economy

// Property tax brackets, evaluated highest first.
var taxBrackets = []struct {
	above int
	rate  float64
}{
	{10, 0.05},
	{5, 0.03},
	{2, 0.02},
}

const baseTaxRate = 0.01

// TaxRate returns the progressive rate for owning count properties.
func TaxRate(count int) float64 {
	for _, b := range taxBrackets {
		if count > b.above {
			return b.rate
		}
	}
	return baseTaxRate
}

// PropertyTax applies the bracket for count properties to value.
func PropertyTax(count int, value float64) (float64, error) {
	if count < 0 {
		return 0, invalid("property count", float64(count))
	}
	if err := nonNegative("property value", value); err != nil {
		return 0, err
	}
	return value * TaxRate(count), nil
}
