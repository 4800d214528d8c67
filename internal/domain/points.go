package domain

// Tier is the gamification bracket derived from total points.
type Tier string

const (
	TierRookie  Tier = "ROOKIE"
	TierVeteran Tier = "VETERAN"
	TierElite   Tier = "ELITE"
	TierLegend  Tier = "LEGEND"
)

// String returns the string representation of Tier.
func (t Tier) String() string {
	return string(t)
}

// PointsResult is the aggregate points view for one wallet.
// Recomputed on every read, never stored.
type PointsResult struct {
	Address          string  `json:"address"`
	PointsPerDay     int64   `json:"points_per_day"`
	DaysActive       float64 `json:"days_active"` // capped at 365
	TotalPoints      int64   `json:"total_points"`
	Tier             Tier    `json:"tier"`
	NextTier         *Tier   `json:"next_tier,omitempty"`
	PointsToNextTier int64   `json:"points_to_next_tier"`
	AssetCount       int     `json:"asset_count"`
	FirstConnectedAt int64   `json:"first_connected_at"` // ms
}
