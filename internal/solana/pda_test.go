package solana

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func TestDecodePubkey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "token program", key: TokenProgramID},
		{name: "mint", key: bonkMint},
		{name: "invalid alphabet", key: "0OIl", wantErr: true},
		{name: "too short", key: base58.Encode([]byte{1, 2, 3}), wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := DecodePubkey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPubkey)
				return
			}
			require.NoError(t, err)
			assert.Len(t, b, 32)
		})
	}
}

func TestMetadataPDA(t *testing.T) {
	addr, err := MetadataPDA(bonkMint)
	require.NoError(t, err)

	raw, err := DecodePubkey(addr)
	require.NoError(t, err)
	assert.False(t, isOnCurve(raw), "PDA must be off curve")

	again, err := MetadataPDA(bonkMint)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	other, err := MetadataPDA(TokenProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestFindProgramAddress_MatchesCreate(t *testing.T) {
	programKey, err := DecodePubkey(MetadataProgramID)
	require.NoError(t, err)
	mintKey, err := DecodePubkey(bonkMint)
	require.NoError(t, err)

	seeds := [][]byte{[]byte("metadata"), programKey, mintKey}
	addr, bump, err := FindProgramAddress(seeds, programKey)
	require.NoError(t, err)

	created, err := CreateProgramAddress(append(seeds, []byte{bump}), programKey)
	require.NoError(t, err)
	assert.Equal(t, addr, base58.Encode(created))

	// Every higher bump must have landed on the curve.
	for b := 255; b > int(bump); b-- {
		_, err := CreateProgramAddress(append(seeds, []byte{byte(b)}), programKey)
		assert.ErrorIs(t, err, errOnCurve)
	}
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	programKey, err := DecodePubkey(MetadataProgramID)
	require.NoError(t, err)

	_, err = CreateProgramAddress([][]byte{make([]byte, 33)}, programKey)
	assert.Error(t, err)

	_, err = CreateProgramAddress(make([][]byte, 17), programKey)
	assert.Error(t, err)
}

func TestMetadataPDA_InvalidMint(t *testing.T) {
	_, err := MetadataPDA("not-a-key")
	assert.ErrorIs(t, err, ErrInvalidPubkey)
}
