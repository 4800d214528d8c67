package scoring

import (
	"math"
	"time"

	"zombie-scanner/internal/domain"
)

// MaxDaysActive caps the accrual period.
const MaxDaysActive = 365.0

const msPerDay = 86_400_000.0

// TierThreshold is the minimum total points for a tier.
type TierThreshold struct {
	Tier      domain.Tier
	MinPoints int64
}

// Tiers is the ascending tier table.
var Tiers = []TierThreshold{
	{Tier: domain.TierRookie, MinPoints: 0},
	{Tier: domain.TierVeteran, MinPoints: 10_000},
	{Tier: domain.TierElite, MinPoints: 50_000},
	{Tier: domain.TierLegend, MinPoints: 100_000},
}

// PointsPerDay sums score totals over the held set.
func PointsPerDay(assets []domain.Asset) int64 {
	var total int64
	for _, a := range assets {
		total += a.Score.Total
	}
	return total
}

// DaysActive returns elapsed days between firstConnectedMs and nowMs,
// floored at 0 and capped at MaxDaysActive.
func DaysActive(firstConnectedMs, nowMs int64) float64 {
	days := float64(nowMs-firstConnectedMs) / msPerDay
	if days < 0 {
		return 0
	}
	return math.Min(days, MaxDaysActive)
}

// TotalPoints returns floor(pointsPerDay × min(daysActive, 365)).
func TotalPoints(pointsPerDay int64, daysActive float64) int64 {
	if daysActive < 0 {
		daysActive = 0
	}
	return int64(math.Floor(float64(pointsPerDay) * math.Min(daysActive, MaxDaysActive)))
}

// TierFor returns the highest tier whose threshold does not exceed total, and
// the next tier with the points still missing to reach it (nil at the top).
func TierFor(total int64) (domain.Tier, *domain.Tier, int64) {
	idx := 0
	for i, th := range Tiers {
		if total >= th.MinPoints {
			idx = i
		}
	}
	if idx+1 >= len(Tiers) {
		return Tiers[idx].Tier, nil, 0
	}
	next := Tiers[idx+1]
	return Tiers[idx].Tier, &next.Tier, next.MinPoints - total
}

// Aggregate builds the points view for a wallet from its scanned assets.
func Aggregate(address string, assets []domain.Asset, firstConnected, now time.Time) domain.PointsResult {
	ppd := PointsPerDay(assets)
	days := DaysActive(firstConnected.UnixMilli(), now.UnixMilli())
	total := TotalPoints(ppd, days)
	tier, next, missing := TierFor(total)

	return domain.PointsResult{
		Address:          address,
		PointsPerDay:     ppd,
		DaysActive:       days,
		TotalPoints:      total,
		Tier:             tier,
		NextTier:         next,
		PointsToNextTier: missing,
		AssetCount:       len(assets),
		FirstConnectedAt: firstConnected.UnixMilli(),
	}
}
