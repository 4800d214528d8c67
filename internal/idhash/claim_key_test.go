package idhash

import (
	"testing"

	"zombie-scanner/internal/domain"
)

func TestComputeClaimKey(t *testing.T) {
	tests := []struct {
		name          string
		address       string
		network       domain.Network
		claimedBefore int64
		points        int64
	}{
		{
			name:    "first claim",
			address: "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
			network: domain.NetworkMainnet,
			points:  1200,
		},
		{
			name:          "after previous claim",
			address:       "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
			network:       domain.NetworkMainnet,
			claimedBefore: 1200,
			points:        300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeClaimKey(tt.address, tt.network, tt.claimedBefore, tt.points)

			if len(got) != 64 {
				t.Errorf("ComputeClaimKey() length = %d, want 64", len(got))
			}

			again := ComputeClaimKey(tt.address, tt.network, tt.claimedBefore, tt.points)
			if got != again {
				t.Errorf("ComputeClaimKey() not deterministic: %s != %s", got, again)
			}
		})
	}
}

func TestComputeClaimKey_Distinct(t *testing.T) {
	base := ComputeClaimKey("wallet", domain.NetworkMainnet, 0, 100)

	variants := map[string]string{
		"address":        ComputeClaimKey("other", domain.NetworkMainnet, 0, 100),
		"network":        ComputeClaimKey("wallet", domain.NetworkDevnet, 0, 100),
		"claimed_before": ComputeClaimKey("wallet", domain.NetworkMainnet, 100, 100),
		"points":         ComputeClaimKey("wallet", domain.NetworkMainnet, 0, 101),
	}

	for field, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}
