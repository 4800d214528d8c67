package price

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJupiter_Prices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		assert.ElementsMatch(t, []string{"bonk", "samo", "unknown", "garbage"}, ids)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"bonk":    map[string]string{"id": "bonk", "type": "derivedPrice", "price": "0.00002134"},
				"samo":    map[string]string{"id": "samo", "type": "derivedPrice", "price": "0.0071"},
				"unknown": nil,
				"garbage": map[string]string{"id": "garbage", "price": "n/a"},
			},
			"timeTaken": 0.003,
		})
	}))
	defer server.Close()

	src := NewJupiter(server.URL, time.Second, nil)
	prices, err := src.Prices(context.Background(), []string{"bonk", "samo", "unknown", "garbage"})
	require.NoError(t, err)

	require.Len(t, prices, 2)
	assert.True(t, decimal.RequireFromString("0.00002134").Equal(prices["bonk"]))
	assert.True(t, decimal.RequireFromString("0.0071").Equal(prices["samo"]))
	_, ok := prices["unknown"]
	assert.False(t, ok)
}

func TestJupiter_Batches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		assert.LessOrEqual(t, len(ids), 100)

		data := map[string]interface{}{}
		for _, id := range ids {
			data[id] = map[string]string{"id": id, "price": "1"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
	defer server.Close()

	mints := make([]string, 150)
	for i := range mints {
		mints[i] = "m" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)
	}

	src := NewJupiter(server.URL, time.Second, nil)
	prices, err := src.Prices(context.Background(), mints)
	require.NoError(t, err)
	assert.Len(t, prices, 150)
	assert.Equal(t, int32(2), calls.Load())
}

func TestJupiter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewJupiter(server.URL, time.Second, nil)
	_, err := src.Prices(context.Background(), []string{"bonk"})
	assert.Error(t, err)
}

func TestJupiter_Empty(t *testing.T) {
	src := NewJupiter("http://127.0.0.1:0", time.Second, nil)
	prices, err := src.Prices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestNoop(t *testing.T) {
	prices, err := Noop{}.Prices(context.Background(), []string{"bonk"})
	require.NoError(t, err)
	assert.Empty(t, prices)
}
