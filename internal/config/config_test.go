package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/scancache"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/solana"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, domain.NetworkMainnet, cfg.Network())
	assert.Equal(t, []string{solana.TokenProgramID, solana.Token2022ProgramID}, cfg.Solana.TokenPrograms)
	assert.Equal(t, scanner.DefaultEnumerateTimeout, cfg.Scanner.EnumerateTimeout)
	assert.Equal(t, scanner.DefaultDormancyLookbackLimit, cfg.Scanner.DormancyLookbackLimit)
	assert.Equal(t, time.Second, cfg.Scanner.Debounce)
	assert.Equal(t, scancache.DefaultTTL, cfg.Cache.TTL)
	assert.Equal(t, scancache.DefaultCapacity, cfg.Cache.Capacity)
	assert.True(t, cfg.Storage.UseMemory)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)

	sc := cfg.ScannerConfig()
	assert.Equal(t, domain.NetworkMainnet, sc.Network)
	assert.Equal(t, scanner.DefaultMetadataConcurrency, sc.MetadataConcurrency)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zombie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
solana:
  network: devnet
  rpc_endpoint: https://api.devnet.solana.com
scanner:
  dormancy_lookback_limit: 12
cache:
  ttl: 2m
log:
  format: json
`), 0o600))

	t.Setenv("ZOMBIE_CACHE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ZOMBIE_SCANNER_ENUMERATE_TIMEOUT", "3s")
	t.Setenv("ZOMBIE_LOG_FORMAT", "text")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.NetworkDevnet, cfg.Network())
	assert.Equal(t, "https://api.devnet.solana.com", cfg.Solana.RPCEndpoint)
	assert.Equal(t, 12, cfg.Scanner.DormancyLookbackLimit)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3*time.Second, cfg.Scanner.EnumerateTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, "text", cfg.Log.Format, "env overrides file")

	cc := cfg.CacheConfig()
	assert.Equal(t, domain.NetworkDevnet, cc.Network)
	assert.Equal(t, 2*time.Minute, cc.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown network", env: map[string]string{"ZOMBIE_SOLANA_NETWORK": "localnet"}},
		{name: "negative lookback", env: map[string]string{"ZOMBIE_SCANNER_DORMANCY_LOOKBACK_LIMIT": "-1"}},
		{name: "postgres without dsn", env: map[string]string{"ZOMBIE_STORAGE_USE_MEMORY": "false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
