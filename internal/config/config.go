// Package config loads application configuration from defaults, an optional
// YAML file, a .env file and ZOMBIE_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/price"
	"zombie-scanner/internal/rewards"
	"zombie-scanner/internal/scancache"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/session"
	"zombie-scanner/internal/solana"
)

// EnvPrefix prefixes every environment override, e.g. ZOMBIE_SOLANA_RPC_ENDPOINT.
const EnvPrefix = "ZOMBIE"

type Config struct {
	Solana      SolanaConfig    `mapstructure:"solana"`
	Scanner     ScannerConfig   `mapstructure:"scanner"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Price       PriceConfig     `mapstructure:"price"`
	Rewards     RewardsConfig   `mapstructure:"rewards"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Server      ServerConfig    `mapstructure:"server"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Log         logging.Config  `mapstructure:"log"`
	CatalogPath string          `mapstructure:"catalog_path"`
}

type SolanaConfig struct {
	RPCEndpoint   string        `mapstructure:"rpc_endpoint"`
	WSEndpoint    string        `mapstructure:"ws_endpoint"`
	Network       string        `mapstructure:"network"`
	RPCRPS        float64       `mapstructure:"rpc_rps"`
	RPCBurst      int           `mapstructure:"rpc_burst"`
	RPCTimeout    time.Duration `mapstructure:"rpc_timeout"`
	TokenPrograms []string      `mapstructure:"token_programs"`
}

type ScannerConfig struct {
	EnumerateTimeout      time.Duration `mapstructure:"enumerate_timeout"`
	ScanTimeout           time.Duration `mapstructure:"scan_timeout"`
	DormancyLookbackLimit int           `mapstructure:"dormancy_lookback_limit"`
	MetadataConcurrency   int           `mapstructure:"metadata_concurrency"`
	Debounce              time.Duration `mapstructure:"debounce"`
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
	RedisURL string        `mapstructure:"redis_url"`
}

type PriceConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RewardsConfig struct {
	Endpoint           string        `mapstructure:"endpoint"`
	APIKey             string        `mapstructure:"api_key"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerFailures    int           `mapstructure:"breaker_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
}

type StorageConfig struct {
	UseMemory     bool   `mapstructure:"use_memory"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	PostgresConns int32  `mapstructure:"postgres_max_conns"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SchedulerConfig holds cron specs (with seconds) for maintenance jobs.
type SchedulerConfig struct {
	CacheSweepCron string        `mapstructure:"cache_sweep_cron"`
	HousekeepCron  string        `mapstructure:"housekeep_cron"`
	SessionMaxIdle time.Duration `mapstructure:"session_max_idle"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solana.rpc_endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.ws_endpoint", "wss://api.mainnet-beta.solana.com")
	v.SetDefault("solana.network", string(domain.NetworkMainnet))
	v.SetDefault("solana.rpc_rps", 10.0)
	v.SetDefault("solana.rpc_burst", 20)
	v.SetDefault("solana.rpc_timeout", solana.DefaultTimeout)
	v.SetDefault("solana.token_programs", []string{solana.TokenProgramID, solana.Token2022ProgramID})

	v.SetDefault("scanner.enumerate_timeout", scanner.DefaultEnumerateTimeout)
	v.SetDefault("scanner.scan_timeout", scanner.DefaultScanTimeout)
	v.SetDefault("scanner.dormancy_lookback_limit", scanner.DefaultDormancyLookbackLimit)
	v.SetDefault("scanner.metadata_concurrency", scanner.DefaultMetadataConcurrency)
	v.SetDefault("scanner.debounce", session.DefaultDebounce)

	v.SetDefault("cache.ttl", scancache.DefaultTTL)
	v.SetDefault("cache.capacity", scancache.DefaultCapacity)
	v.SetDefault("cache.redis_url", "")

	v.SetDefault("price.enabled", true)
	v.SetDefault("price.endpoint", price.DefaultJupiterEndpoint)
	v.SetDefault("price.timeout", price.DefaultTimeout)

	v.SetDefault("rewards.endpoint", "")
	v.SetDefault("rewards.api_key", "")
	v.SetDefault("rewards.timeout", rewards.DefaultTimeout)
	v.SetDefault("rewards.breaker_failures", 5)
	v.SetDefault("rewards.breaker_open_timeout", 30*time.Second)

	v.SetDefault("storage.use_memory", true)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.postgres_max_conns", 10)
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("scheduler.cache_sweep_cron", "0 * * * * *")
	v.SetDefault("scheduler.housekeep_cron", "30 */5 * * * *")
	v.SetDefault("scheduler.session_max_idle", 30*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("catalog_path", "")
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if !domain.Network(c.Solana.Network).IsValid() {
		return fmt.Errorf("solana.network: unknown network %q", c.Solana.Network)
	}
	if c.Solana.RPCEndpoint == "" {
		return errors.New("solana.rpc_endpoint is required")
	}
	if c.Solana.RPCRPS < 0 {
		return fmt.Errorf("solana.rpc_rps: must not be negative, got %v", c.Solana.RPCRPS)
	}
	if c.Scanner.DormancyLookbackLimit < 0 {
		return fmt.Errorf("scanner.dormancy_lookback_limit: must not be negative, got %d", c.Scanner.DormancyLookbackLimit)
	}
	if !c.Storage.UseMemory && c.Storage.PostgresDSN == "" {
		return errors.New("storage.postgres_dsn is required unless storage.use_memory is set")
	}
	return nil
}

// Network returns the configured ledger cluster.
func (c *Config) Network() domain.Network {
	return domain.Network(c.Solana.Network)
}

// ScannerConfig maps the solana and scanner sections onto scanner.Config.
func (c *Config) ScannerConfig() scanner.Config {
	return scanner.Config{
		Network:               c.Network(),
		TokenPrograms:         c.Solana.TokenPrograms,
		EnumerateTimeout:      c.Scanner.EnumerateTimeout,
		ScanTimeout:           c.Scanner.ScanTimeout,
		DormancyLookbackLimit: c.Scanner.DormancyLookbackLimit,
		MetadataConcurrency:   c.Scanner.MetadataConcurrency,
	}
}

// CacheConfig maps the cache section onto scancache.Config.
func (c *Config) CacheConfig() scancache.Config {
	return scancache.Config{
		Network:  c.Network(),
		TTL:      c.Cache.TTL,
		Capacity: c.Cache.Capacity,
	}
}
