package points

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/storage/memory"
)

type fakeAssets struct {
	assets []domain.Asset
	err    error
}

func (f fakeAssets) Scan(context.Context, string) ([]domain.Asset, error) {
	return f.assets, f.err
}

type fakeHistory struct {
	first time.Time
	ok    bool
	err   error
}

func (f fakeHistory) FirstConnectedAt(context.Context, string) (time.Time, bool, error) {
	return f.first, f.ok, f.err
}

func scored(total int64, category domain.Category) domain.Asset {
	return domain.Asset{Category: category, Score: domain.ZombieScore{Total: total}}
}

func TestService_Points(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	assets := fakeAssets{assets: []domain.Asset{
		scored(40, domain.CategoryDormantToken),
		scored(60, domain.CategoryDeadProject),
	}}
	history := fakeHistory{first: now.Add(-48 * time.Hour), ok: true}

	svc := NewService(assets, history)
	svc.nowFn = func() time.Time { return now }

	res, err := svc.Points(context.Background(), "wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.PointsPerDay)
	assert.InDelta(t, 2.0, res.DaysActive, 1e-9)
	assert.Equal(t, int64(200), res.TotalPoints)
	assert.Equal(t, domain.TierRookie, res.Tier)
	require.NotNil(t, res.NextTier)
	assert.Equal(t, domain.TierVeteran, *res.NextTier)
	assert.Equal(t, int64(9_800), res.PointsToNextTier)
	assert.Equal(t, 2, res.AssetCount)
}

func TestService_NeverConnected(t *testing.T) {
	svc := NewService(fakeAssets{assets: []domain.Asset{scored(15, domain.CategoryDormantToken)}}, fakeHistory{})

	res, err := svc.Points(context.Background(), "wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.PointsPerDay)
	assert.Zero(t, res.TotalPoints)
}

func TestService_Errors(t *testing.T) {
	scanErr := errors.New("scan failed")
	svc := NewService(fakeAssets{err: scanErr}, fakeHistory{})
	_, err := svc.Points(context.Background(), "wallet")
	assert.ErrorIs(t, err, scanErr)

	histErr := errors.New("db down")
	svc = NewService(fakeAssets{}, fakeHistory{err: histErr})
	_, err = svc.Points(context.Background(), "wallet")
	assert.ErrorIs(t, err, histErr)
}

func TestSnapshotRecorder(t *testing.T) {
	store := memory.NewScanSnapshotStore()
	record := SnapshotRecorder(store, logging.Nop())
	at := time.UnixMilli(1_700_000_000_000)

	record(context.Background(), scanner.Result{
		Address:     "wallet",
		Network:     domain.NetworkMainnet,
		Assets:      []domain.Asset{scored(20, domain.CategoryAbandonedNFT), scored(5, domain.CategoryDustToken)},
		Duration:    1500 * time.Millisecond,
		CompletedAt: at,
	})
	record(context.Background(), scanner.Result{Address: "wallet", Err: errors.New("boom")})

	snaps, err := store.GetByAddress(context.Background(), "wallet", domain.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 2, snaps[0].AssetCount)
	assert.Equal(t, 1, snaps[0].NFTCount)
	assert.Equal(t, 1, snaps[0].DustCount)
	assert.Equal(t, int64(25), snaps[0].PointsPerDay)
	assert.Equal(t, int64(1500), snaps[0].DurationMs)
	assert.Equal(t, at.UnixMilli(), snaps[0].CapturedAt)
}
