package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

func TestSessionStore_RecordConnect(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	first, err := store.RecordConnect(ctx, "wallet-1", domain.NetworkMainnet, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), first.FirstConnectedAt)
	assert.Equal(t, int64(1000), first.LastConnectedAt)
	assert.Equal(t, int64(1), first.ConnectCount)
	assert.Nil(t, first.LastScanAt)

	second, err := store.RecordConnect(ctx, "wallet-1", domain.NetworkMainnet, 9000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), second.FirstConnectedAt, "first connection never moves")
	assert.Equal(t, int64(9000), second.LastConnectedAt)
	assert.Equal(t, int64(2), second.ConnectCount)

	stale, err := store.RecordConnect(ctx, "wallet-1", domain.NetworkMainnet, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stale.FirstConnectedAt)
	assert.Equal(t, int64(9000), stale.LastConnectedAt)
}

func TestSessionStore_GetAndMarkScanned(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	_, err := store.Get(ctx, "wallet-1", domain.NetworkMainnet)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.MarkScanned(ctx, "wallet-1", domain.NetworkMainnet, 1), storage.ErrNotFound)

	_, err = store.RecordConnect(ctx, "wallet-1", domain.NetworkMainnet, 1000)
	require.NoError(t, err)
	require.NoError(t, store.MarkScanned(ctx, "wallet-1", domain.NetworkMainnet, 1500))

	got, err := store.Get(ctx, "wallet-1", domain.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(1500)), got.LastScanAt)
	assert.Equal(t, domain.NetworkMainnet, got.Network)
}

func TestSessionStore_ListConnectedSince(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	for i, addr := range []string{"a", "b", "c"} {
		_, err := store.RecordConnect(ctx, addr, domain.NetworkMainnet, int64(1000*(i+1)))
		require.NoError(t, err)
	}
	_, err := store.RecordConnect(ctx, "d", domain.NetworkDevnet, 5000)
	require.NoError(t, err)

	got, err := store.ListConnectedSince(ctx, domain.NetworkMainnet, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Address)
	assert.Equal(t, "b", got[1].Address)
}
