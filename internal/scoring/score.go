package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"zombie-scanner/internal/domain"
)

// Bounds of the score factors.
const (
	MinBalanceMultiplier = 1.0
	MaxBalanceMultiplier = 5.0
	MaxDormancyBonus     = 3.0

	// bonusPerPeriod is added for each dormancyPeriodDays of inactivity.
	bonusPerPeriod     = 0.5
	dormancyPeriodDays = 30.0
)

// CategoryRate returns base points per day for a category.
func CategoryRate(c domain.Category) int {
	switch c {
	case domain.CategoryDustToken:
		return 5
	case domain.CategoryDormantToken:
		return 15
	case domain.CategoryAbandonedNFT:
		return 20
	case domain.CategoryDeadProject:
		return 25
	}
	return 0
}

// BalanceMultiplier returns clamp(log2(b+1), 1, 5). Non-positive balances
// count as one token.
func BalanceMultiplier(balance float64) float64 {
	if balance <= 0 || math.IsNaN(balance) {
		balance = 1
	}
	return clamp(math.Log2(balance+1), MinBalanceMultiplier, MaxBalanceMultiplier)
}

// DormancyBonus returns clamp(d/30 × 0.5, 0, 3).
func DormancyBonus(days float64) float64 {
	if math.IsNaN(days) {
		return 0
	}
	return clamp(days/dormancyPeriodDays*bonusPerPeriod, 0, MaxDormancyBonus)
}

// Score computes the ZombieScore of one asset. A nil balance counts as one token.
func Score(category domain.Category, balance *decimal.Decimal, dormancyDays int) domain.ZombieScore {
	b := 1.0
	if balance != nil {
		b = balance.InexactFloat64()
	}

	rate := CategoryRate(category)
	mult := BalanceMultiplier(b)
	bonus := DormancyBonus(float64(dormancyDays))

	return domain.ZombieScore{
		CategoryRate:      rate,
		BalanceMultiplier: mult,
		DormancyBonus:     bonus,
		Total:             int64(math.Round(float64(rate) * mult * (1 + bonus))),
	}
}

// ScoreAsset fills in a.Score from its category, balance and dormancy.
func ScoreAsset(a *domain.Asset) {
	days := 0
	if a.DormancyDays != nil {
		days = *a.DormancyDays
	}
	a.Score = Score(a.Category, a.Balance, days)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
