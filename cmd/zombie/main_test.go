package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/domain"
)

func TestPrintAssets(t *testing.T) {
	name := "Dead Coin"
	balance := decimal.NewFromInt(1)
	days := 120
	assets := []domain.Asset{
		{
			Mint:         "So11111111111111111111111111111111111111112",
			Name:         &name,
			Balance:      &balance,
			Category:     domain.CategoryDeadProject,
			DormancyDays: &days,
			Score:        domain.ZombieScore{Total: 25},
		},
		{
			Mint:     "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
			Category: domain.CategoryDustToken,
			Score:    domain.ZombieScore{Total: 5},
		},
	}

	var out bytes.Buffer
	require.NoError(t, printAssets(&out, assets))

	text := out.String()
	assert.Contains(t, text, "CATEGORY")
	assert.Contains(t, text, "Dead Coin")
	assert.Contains(t, text, "120")
	assert.Contains(t, text, "2 assets")
	assert.Contains(t, text, "30")
}

func TestRun_ArgumentErrors(t *testing.T) {
	assert.Error(t, run([]string{"scan"}))
	assert.Error(t, run([]string{"points", "a", "b"}))
	assert.Error(t, run([]string{"unknown"}))
}
