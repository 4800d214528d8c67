// Package points serves the aggregate points view of a wallet.
package points

import (
	"context"
	"time"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/scoring"
)

// AssetSource returns a wallet's scored zombie assets.
type AssetSource interface {
	Scan(ctx context.Context, address string) ([]domain.Asset, error)
}

// ConnectionHistory returns when a wallet first connected.
type ConnectionHistory interface {
	FirstConnectedAt(ctx context.Context, address string) (time.Time, bool, error)
}

// Service combines the current scan with connection history into a PointsResult.
type Service struct {
	assets  AssetSource
	history ConnectionHistory
	nowFn   func() time.Time
}

// NewService creates a points Service.
func NewService(assets AssetSource, history ConnectionHistory) *Service {
	return &Service{
		assets:  assets,
		history: history,
		nowFn:   time.Now,
	}
}

// Points computes the wallet's points. A wallet with no recorded connection
// accrues from now, so its total is zero.
func (s *Service) Points(ctx context.Context, address string) (domain.PointsResult, error) {
	assets, err := s.assets.Scan(ctx, address)
	if err != nil {
		return domain.PointsResult{}, err
	}

	now := s.nowFn()
	first, ok, err := s.history.FirstConnectedAt(ctx, address)
	if err != nil {
		return domain.PointsResult{}, err
	}
	if !ok {
		first = now
	}

	return scoring.Aggregate(address, assets, first, now), nil
}
