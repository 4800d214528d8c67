// Package price resolves best-effort USD spot prices for token mints.
package price

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source returns USD prices for mints. Mints without a known price are absent
// from the result; that is not an error.
type Source interface {
	Prices(ctx context.Context, mints []string) (map[string]decimal.Decimal, error)
}

// Noop is a Source that never knows a price.
type Noop struct{}

// Prices returns an empty map.
func (Noop) Prices(context.Context, []string) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

var _ Source = Noop{}
