// Package scoring classifies zombie assets and computes their points.
// All functions are pure and total.
package scoring

import (
	"github.com/shopspring/decimal"

	"zombie-scanner/internal/domain"
)

// DustThresholdUSD is the USD value below which a priced token is dust.
var DustThresholdUSD = decimal.RequireFromString("0.10")

// DormantDays is the idle period after which a token counts as dormant.
const DormantDays = 90

// DeadProjectSet reports dead-project membership.
type DeadProjectSet interface {
	IsDeadProject(mint string) bool
}

// Classify assigns a token holding to exactly one category. Rules are
// evaluated in order; the first match wins:
//  1. dead-project mint → DEAD_PROJECT
//  2. price known and balance × price < 0.10 → DUST_TOKEN
//  3. dormancy ≥ 90 days → DORMANT_TOKEN
//  4. otherwise → DORMANT_TOKEN
func Classify(dead DeadProjectSet, mint string, balance decimal.Decimal, usdPrice *decimal.Decimal, dormancyDays int) domain.Category {
	if dead != nil && dead.IsDeadProject(mint) {
		return domain.CategoryDeadProject
	}
	if usdPrice != nil && balance.Mul(*usdPrice).LessThan(DustThresholdUSD) {
		return domain.CategoryDustToken
	}
	if dormancyDays >= DormantDays {
		return domain.CategoryDormantToken
	}
	return domain.CategoryDormantToken
}

// ClassifyNFT returns the category for a non-fungible holding.
func ClassifyNFT() domain.Category {
	return domain.CategoryAbandonedNFT
}
