package domain

import "github.com/shopspring/decimal"

// AssetKind distinguishes fungible holdings from non-fungible ones.
type AssetKind string

const (
	AssetKindToken       AssetKind = "TOKEN"
	AssetKindNonFungible AssetKind = "NFT"
)

// String returns the string representation of AssetKind.
func (k AssetKind) String() string {
	return string(k)
}

// Category is the zombie classification assigned to a holding during a scan.
type Category string

const (
	CategoryDustToken    Category = "DUST_TOKEN"
	CategoryDormantToken Category = "DORMANT_TOKEN"
	CategoryAbandonedNFT Category = "ABANDONED_NFT"
	CategoryDeadProject  Category = "DEAD_PROJECT"
)

// AllCategories lists categories in display order.
var AllCategories = []Category{
	CategoryDustToken,
	CategoryDormantToken,
	CategoryAbandonedNFT,
	CategoryDeadProject,
}

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDustToken, CategoryDormantToken, CategoryAbandonedNFT, CategoryDeadProject:
		return true
	}
	return false
}

// ZombieScore is the derived per-asset score. Immutable once computed.
type ZombieScore struct {
	CategoryRate      int     `json:"category_rate"`      // base points per day
	BalanceMultiplier float64 `json:"balance_multiplier"` // in [1, 5]
	DormancyBonus     float64 `json:"dormancy_bonus"`     // in [0, 3]
	Total             int64   `json:"total"`              // points per day
}

// Asset is one qualifying holding detected during a scan.
// Assets are rebuilt on every scan cycle and never written to durable storage.
type Asset struct {
	Kind         AssetKind        `json:"kind"`
	Mint         string           `json:"mint"`
	TokenAccount string           `json:"token_account"`
	Name         *string          `json:"name,omitempty"`
	Symbol       *string          `json:"symbol,omitempty"`
	Balance      *decimal.Decimal `json:"balance,omitempty"` // UI amount, tokens only
	Decimals     uint8            `json:"decimals"`
	Category     Category         `json:"category"`
	USDValue     *decimal.Decimal `json:"usd_value,omitempty"`
	DormancyDays *int             `json:"dormancy_days,omitempty"`
	Score        ZombieScore      `json:"score"`
}

// Clone returns a copy of a that shares no pointers with it.
func (a Asset) Clone() Asset {
	a.Name = clonePtr(a.Name)
	a.Symbol = clonePtr(a.Symbol)
	a.Balance = clonePtr(a.Balance)
	a.USDValue = clonePtr(a.USDValue)
	a.DormancyDays = clonePtr(a.DormancyDays)
	return a
}

// CloneAssets deep-copies assets. A nil slice yields an empty one.
func CloneAssets(assets []Asset) []Asset {
	out := make([]Asset, len(assets))
	for i := range assets {
		out[i] = assets[i].Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CountByCategory returns the number of assets per category.
func CountByCategory(assets []Asset) map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	for _, a := range assets {
		counts[a.Category]++
	}
	return counts
}
