package economy

import (
	"math"

	humanize "github.com/dustin/go-humanize"

	"github.com/talgya/geofarm/internal/entropy"
)

// Brazilian real formatting: "." groups thousands, "," separates decimals.
const (
	currencyFormat = "#.###,##"
	integerFormat  = "#.###,"
	decimalFormat  = "#.###,###"
)

// FormatCurrency renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-R$ " + humanize.FormatFloat(currencyFormat, -amount)
	}
	return "R$ " + humanize.FormatFloat(currencyFormat, amount)
}

// FormatNumber renders a number with pt-BR grouping. Whole numbers carry no
// decimal part.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) {
		return humanize.FormatFloat(integerFormat, n)
	}
	return humanize.FormatFloat(decimalFormat, n)
}

var (
	namePrefixes = []string{"Fazenda", "Sítio", "Chácara", "Estância", "Granja"}
	nameSuffixes = []string{"Verde", "Boa Vista", "Santa Rita", "São José", "Esperança"}
)

// PropertyName draws a random farm name such as "Fazenda Boa Vista".
func PropertyName(src entropy.Source) string {
	return entropy.Pick(src, namePrefixes) + " " + entropy.Pick(src, nameSuffixes)
}
