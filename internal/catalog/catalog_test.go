package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bonk = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	cope = "8HGyAAB1yoM1ttS7pXjHMa3dukTFGQggnFFH3hJZgzQh"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.True(t, c.IsAllowlisted(bonk))
	assert.False(t, c.IsDeadProject(bonk))
	assert.True(t, c.IsDeadProject(cope))
	assert.True(t, c.IsAllowlisted(cope))

	tok, ok := c.Token(bonk)
	require.True(t, ok)
	assert.Equal(t, "Bonk", tok.Name)
	assert.Equal(t, "BONK", tok.Symbol)
	require.NotNil(t, tok.Decimals)
	assert.Equal(t, uint8(5), *tok.Decimals)

	assert.False(t, c.IsAllowlisted("So11111111111111111111111111111111111111112"))
	assert.Equal(t, bonk, c.Mints()[0])
}

func TestMatchesDeadCollection(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"Degen Ape #1234", true},
		{"DEGEN APE ACADEMY", true},
		{"Solana Monkey Business #9", true},
		{"Mad Lads #1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MatchesDeadCollection(tt.name))
		})
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad base58",
			yaml: "tokens:\n  - mint: not0valid\n",
		},
		{
			name: "wrong length",
			yaml: "tokens:\n  - mint: 3yZe7d\n",
		},
		{
			name: "duplicate mint",
			yaml: "tokens:\n  - mint: " + bonk + "\n  - mint: " + bonk + "\n",
		},
		{
			name: "bad dead project",
			yaml: "dead_projects:\n  - abc\n",
		},
		{
			name: "empty pattern",
			yaml: "dead_collections:\n  - '  '\n",
		},
		{
			name: "not yaml",
			yaml: "tokens: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestParse_DeadProjectImpliesAllowlisted(t *testing.T) {
	c, err := Parse([]byte("dead_projects:\n  - " + cope + "\n"))
	require.NoError(t, err)

	assert.True(t, c.IsAllowlisted(cope))
	tok, ok := c.Token(cope)
	require.True(t, ok)
	assert.Empty(t, tok.Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "tokens:\n  - mint: " + bonk + "\n    name: Custom Bonk\ndead_collections:\n  - Frakt\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)

	tok, _ := c.Token(bonk)
	assert.Equal(t, "Custom Bonk", tok.Name)
	assert.Equal(t, []string{"frakt"}, c.DeadCollections())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadFile("")
	require.NoError(t, err)
	assert.True(t, def.IsAllowlisted(bonk))
}
