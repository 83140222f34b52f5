package economy

import "math"

// XPPerCurrency is how much currency earns one XP point.
const XPPerCurrency = 1000.0

// MaxXPGrant caps the XP a single transaction can award.
const MaxXPGrant = 1 << 53

// XPFromTransaction returns the XP earned by a transaction. Only credits
// earn XP; debits and zero amounts award nothing.
func XPFromTransaction(amount float64) uint64 {
	if math.IsNaN(amount) || amount <= 0 {
		return 0
	}
	xp := math.Floor(amount / XPPerCurrency)
	if xp >= MaxXPGrant {
		return MaxXPGrant
	}
	return uint64(xp)
}

// LevelFromXP returns floor(sqrt(xp/100)) + 1. Level is always at least 1.
func LevelFromXP(xp uint64) int {
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}
