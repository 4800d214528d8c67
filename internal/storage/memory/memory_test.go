package memory

import (
	"context"
	"errors"
	"testing"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

const wallet = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

func TestSessionStore_FirstConnectionNeverMoves(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	first, err := store.RecordConnect(ctx, wallet, domain.NetworkMainnet, 1000)
	if err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}
	if first.FirstConnectedAt != 1000 || first.ConnectCount != 1 {
		t.Fatalf("unexpected first session: %+v", first)
	}

	later, err := store.RecordConnect(ctx, wallet, domain.NetworkMainnet, 5000)
	if err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}
	if later.FirstConnectedAt != 1000 {
		t.Errorf("FirstConnectedAt moved: got %d, want 1000", later.FirstConnectedAt)
	}
	if later.LastConnectedAt != 5000 {
		t.Errorf("LastConnectedAt mismatch: got %d, want 5000", later.LastConnectedAt)
	}

	// Out-of-order event does not rewind either timestamp.
	stale, err := store.RecordConnect(ctx, wallet, domain.NetworkMainnet, 500)
	if err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}
	if stale.FirstConnectedAt != 1000 || stale.LastConnectedAt != 5000 || stale.ConnectCount != 3 {
		t.Errorf("unexpected session after stale connect: %+v", stale)
	}
}

func TestSessionStore_NetworksAreSeparate(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	if _, err := store.RecordConnect(ctx, wallet, domain.NetworkMainnet, 1000); err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}

	_, err := store.Get(ctx, wallet, domain.NetworkDevnet)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_MarkScanned(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	if err := store.MarkScanned(ctx, wallet, domain.NetworkMainnet, 10); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if _, err := store.RecordConnect(ctx, wallet, domain.NetworkMainnet, 1000); err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}
	if err := store.MarkScanned(ctx, wallet, domain.NetworkMainnet, 2000); err != nil {
		t.Fatalf("MarkScanned failed: %v", err)
	}

	got, err := store.Get(ctx, wallet, domain.NetworkMainnet)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.LastScanAt == nil || *got.LastScanAt != 2000 {
		t.Errorf("LastScanAt mismatch: got %v", got.LastScanAt)
	}
}

func TestSessionStore_ListConnectedSince(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	for i, addr := range []string{"a", "b", "c"} {
		if _, err := store.RecordConnect(ctx, addr, domain.NetworkMainnet, int64(1000*(i+1))); err != nil {
			t.Fatalf("RecordConnect failed: %v", err)
		}
	}

	got, err := store.ListConnectedSince(ctx, domain.NetworkMainnet, 2000)
	if err != nil {
		t.Fatalf("ListConnectedSince failed: %v", err)
	}
	if len(got) != 2 || got[0].Address != "c" || got[1].Address != "b" {
		t.Errorf("unexpected sessions: %+v", got)
	}
}

func TestSessionStore_InvalidInput(t *testing.T) {
	store := NewSessionStore()

	_, err := store.RecordConnect(context.Background(), "", domain.NetworkMainnet, 1)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestClaimStore_InsertAndSum(t *testing.T) {
	store := NewClaimStore()
	ctx := context.Background()

	claims := []*domain.ClaimRecord{
		{ClaimID: "c1", IdempotencyKey: "k1", Address: wallet, Network: domain.NetworkMainnet, Points: 100, Status: domain.ClaimStatusSuccess, CreatedAt: 2},
		{ClaimID: "c2", IdempotencyKey: "k2", Address: wallet, Network: domain.NetworkMainnet, Points: 50, Status: domain.ClaimStatusFailed, CreatedAt: 1},
		{ClaimID: "c3", IdempotencyKey: "k3", Address: wallet, Network: domain.NetworkDevnet, Points: 70, Status: domain.ClaimStatusSuccess, CreatedAt: 3},
	}
	for _, c := range claims {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	sum, err := store.SumClaimedPoints(ctx, wallet, domain.NetworkMainnet)
	if err != nil {
		t.Fatalf("SumClaimedPoints failed: %v", err)
	}
	if sum != 100 {
		t.Errorf("sum mismatch: got %d, want 100", sum)
	}

	got, err := store.GetByAddress(ctx, wallet, domain.NetworkMainnet)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(got) != 2 || got[0].ClaimID != "c2" || got[1].ClaimID != "c1" {
		t.Errorf("unexpected claims order: %+v", got)
	}
}

func TestClaimStore_DuplicateKey(t *testing.T) {
	store := NewClaimStore()
	ctx := context.Background()

	failed := &domain.ClaimRecord{ClaimID: "c0", IdempotencyKey: "k1", Address: wallet, Network: domain.NetworkMainnet, Status: domain.ClaimStatusFailed}
	if err := store.Insert(ctx, failed); err != nil {
		t.Fatalf("Failed-claim insert failed: %v", err)
	}

	claim := &domain.ClaimRecord{ClaimID: "c1", IdempotencyKey: "k1", Address: wallet, Network: domain.NetworkMainnet, Status: domain.ClaimStatusSuccess}
	if err := store.Insert(ctx, claim); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	if err := store.Insert(ctx, claim); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	sameKey := &domain.ClaimRecord{ClaimID: "c2", IdempotencyKey: "k1", Address: wallet, Network: domain.NetworkMainnet, Status: domain.ClaimStatusSuccess}
	if err := store.Insert(ctx, sameKey); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for reused idempotency key, got %v", err)
	}

	if _, err := store.GetByID(ctx, "c2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClaimStore_ReturnsCopies(t *testing.T) {
	store := NewClaimStore()
	ctx := context.Background()

	claim := &domain.ClaimRecord{ClaimID: "c1", Address: wallet, Network: domain.NetworkMainnet, Points: 10}
	if err := store.Insert(ctx, claim); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	claim.Points = 999

	got, err := store.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Points != 10 {
		t.Errorf("stored claim was mutated: got %d", got.Points)
	}
}

func TestScanSnapshotStore_Queries(t *testing.T) {
	store := NewScanSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.ScanSnapshot{
		{Address: wallet, Network: domain.NetworkMainnet, AssetCount: 3, CapturedAt: 300},
		{Address: wallet, Network: domain.NetworkMainnet, AssetCount: 1, CapturedAt: 100},
		{Address: "other", Network: domain.NetworkMainnet, AssetCount: 2, CapturedAt: 200},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	byAddr, err := store.GetByAddress(ctx, wallet, domain.NetworkMainnet)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(byAddr) != 2 || byAddr[0].CapturedAt != 100 {
		t.Errorf("unexpected snapshots: %+v", byAddr)
	}

	inRange, err := store.GetByTimeRange(ctx, 150, 300)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(inRange) != 2 {
		t.Errorf("expected 2 snapshots in range, got %d", len(inRange))
	}

	if err := store.Insert(ctx, &domain.ScanSnapshot{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
