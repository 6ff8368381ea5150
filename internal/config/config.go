package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// MaxGraphQLPageSize is the largest page the Sui GraphQL service serves.
const MaxGraphQLPageSize = 50

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"DECEIT_ADDR"`
	CORSOrigin      string        `yaml:"cors_origin" env:"DECEIT_CORS_ORIGIN"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"DECEIT_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DECEIT_DB_DSN"`
	MigrationsDir   string        `yaml:"migrations_dir" env:"DECEIT_MIGRATIONS_DIR"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DECEIT_DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DECEIT_DB_CONN_MAX_LIFETIME"`
}

type ReplayConfig struct {
	Interval    time.Duration `yaml:"interval" env:"DECEIT_REPLAY_INTERVAL"`
	FixtureFile string        `yaml:"fixture_file" env:"DECEIT_FIXTURE_FILE"`
}

type SuiConfig struct {
	GraphQLURL        string        `yaml:"graphql_url" env:"DECEIT_SUI_GRAPHQL_URL"`
	RPCURL            string        `yaml:"rpc_url" env:"DECEIT_SUI_RPC_URL"`
	StateObjectID     string        `yaml:"state_object_id" env:"DECEIT_SUI_STATE_OBJECT_ID"`
	CoinType          string        `yaml:"coin_type" env:"DECEIT_SUI_COIN_TYPE"`
	PageSize          int           `yaml:"page_size" env:"DECEIT_SUI_PAGE_SIZE"`
	MaxPages          int           `yaml:"max_pages" env:"DECEIT_SUI_MAX_PAGES"`
	Timeout           time.Duration `yaml:"timeout" env:"DECEIT_SUI_TIMEOUT"`
	Retries           int           `yaml:"retries" env:"DECEIT_SUI_RETRIES"`
	DetailConcurrency int           `yaml:"detail_concurrency" env:"DECEIT_SUI_DETAIL_CONCURRENCY"`
}

type CacheConfig struct {
	TTL  time.Duration `yaml:"ttl" env:"DECEIT_CACHE_TTL"`
	Size int           `yaml:"size" env:"DECEIT_CACHE_SIZE"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Replay   ReplayConfig   `yaml:"replay"`
	Sui      SuiConfig      `yaml:"sui"`
	Cache    CacheConfig    `yaml:"cache"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigin:      "*",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MigrationsDir:   "db/migrations",
			MaxOpenConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Replay: ReplayConfig{
			Interval: 2 * time.Second,
		},
		Sui: SuiConfig{
			GraphQLURL:        "https://sui-mainnet.mystenlabs.com/graphql",
			RPCURL:            "https://fullnode.mainnet.sui.io:443",
			CoinType:          "0xa99b8952d4f7d947ea77fe0ecdcc9e5fc0bcab2841d6e2a5aa00c3044e5544b5::navx::NAVX",
			PageSize:          MaxGraphQLPageSize,
			MaxPages:          1000,
			Timeout:           10 * time.Second,
			Retries:           2,
			DetailConcurrency: 8,
		},
		Cache: CacheConfig{
			TTL:  30 * time.Second,
			Size: 64,
		},
	}
}

// Load starts from Default, overlays the YAML file at path when path is
// non-empty, then overlays DECEIT_* environment variables.
func Load(path string) (Config, error) {
	c := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Replay.Interval <= 0 {
		errs = append(errs, errors.New("replay.interval must be positive"))
	}
	if c.Sui.PageSize < 1 || c.Sui.PageSize > MaxGraphQLPageSize {
		errs = append(errs, fmt.Errorf("sui.page_size must be between 1 and %d", MaxGraphQLPageSize))
	}
	if c.Sui.MaxPages < 1 {
		errs = append(errs, errors.New("sui.max_pages must be positive"))
	}
	if c.Sui.Retries < 0 {
		errs = append(errs, errors.New("sui.retries must not be negative"))
	}
	if c.Cache.Size < 1 {
		errs = append(errs, errors.New("cache.size must be positive"))
	}
	return errors.Join(errs...)
}
