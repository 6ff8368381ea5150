package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	httpadapter "deceit/internal/adapter/http"
	"deceit/internal/adapter/eventlog/wire"
	"deceit/internal/adapter/metrics/fanout"
	metricsinmem "deceit/internal/adapter/metrics/inmemory"
	metricsprom "deceit/internal/adapter/metrics/prom"
	gormrepo "deceit/internal/adapter/repo/gorm"
	memrepo "deceit/internal/adapter/repo/memory"
	"deceit/internal/adapter/sui"
	"deceit/internal/app/balance"
	appcollection "deceit/internal/app/collection"
	"deceit/internal/app/leaderboard"
	"deceit/internal/app/ports"
	"deceit/internal/app/spectate"
	"deceit/internal/app/watchlist"
	"deceit/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
	"gorm.io/gorm"
)

const defaultConfigFile = "deceit.yaml"

func main() {
	ctx := context.Background()
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logs, db, err := buildEventLogStore(ctx, cfg)
	if err != nil {
		log.Fatalf("event log store: %v", err)
	}

	kpi := metricsinmem.NewRecorder()
	prom := metricsprom.NewRecorder()
	rooms := spectate.NewRooms(spectate.Config{
		Logs:     logs,
		Metrics:  fanout.Replay{kpi, prom},
		Interval: cfg.Replay.Interval,
	})

	h := httpadapter.Handler{
		Rooms:      rooms,
		KPI:        kpi,
		Metrics:    prom.Handler(),
		CORSOrigin: cfg.Server.CORSOrigin,
	}
	if err := wireChain(&h, cfg, fanout.Pagination{kpi, prom}); err != nil {
		log.Fatalf("sui client: %v", err)
	}

	s := server.Default(
		server.WithHostPorts(cfg.Server.Addr),
		server.WithExitWaitTime(cfg.Server.ShutdownTimeout),
	)
	s.OnShutdown = append(s.OnShutdown, func(context.Context) {
		rooms.Close()
		if db != nil {
			if err := gormrepo.Close(db); err != nil {
				log.Printf("close postgres: %v", err)
			}
		}
	})
	h.RegisterRoutes(s)

	log.Printf("deceit replay server listening on %s", cfg.Server.Addr)
	s.Spin()
}

// resolveConfigPath prefers DECEIT_CONFIG, then ./deceit.yaml when present.
// An empty result means defaults plus environment only.
func resolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("DECEIT_CONFIG")); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// buildEventLogStore uses postgres when a DSN is configured and an
// in-process store otherwise, then loads the fixture file if one is set.
func buildEventLogStore(ctx context.Context, cfg config.Config) (ports.EventLogRepository, *gorm.DB, error) {
	var (
		repo ports.EventLogRepository
		db   *gorm.DB
	)
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		var err error
		db, err = gormrepo.OpenPostgres(ctx, dsn, gormrepo.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		applied, err := gormrepo.ApplyMigrations(ctx, db, os.DirFS(cfg.Database.MigrationsDir))
		if err != nil {
			return nil, nil, err
		}
		if len(applied) > 0 {
			log.Printf("applied %d migrations", len(applied))
		}
		repo = gormrepo.NewEventLogRepo(db)
	} else {
		log.Println("DECEIT_DB_DSN not set; event logs are kept in memory")
		repo = memrepo.NewStore()
	}

	if path := strings.TrimSpace(cfg.Replay.FixtureFile); path != "" {
		fixtures, err := wire.LoadFile(path, "fixture")
		if err != nil {
			return nil, nil, fmt.Errorf("load fixtures: %w", err)
		}
		for _, l := range fixtures {
			if err := repo.Save(ctx, l); err != nil {
				return nil, nil, fmt.Errorf("seed room %s: %w", l.RoomID, err)
			}
		}
		log.Printf("loaded %d fixture rooms from %s", len(fixtures), path)
	}
	return repo, db, nil
}

// wireChain attaches the on-chain listings. Without a state object id the
// listing routes answer not_configured.
func wireChain(h *httpadapter.Handler, cfg config.Config, metrics ports.PaginationMetrics) error {
	client, err := sui.NewClient(sui.Config{
		GraphQLURL: cfg.Sui.GraphQLURL,
		RPCURL:     cfg.Sui.RPCURL,
		Timeout:    cfg.Sui.Timeout,
		Retries:    cfg.Sui.Retries,
	})
	if err != nil {
		return err
	}
	drainer := appcollection.NewCache(appcollection.Reader{
		Source:   client,
		MaxPages: cfg.Sui.MaxPages,
		Metrics:  metrics,
	}, cfg.Cache.Size, cfg.Cache.TTL)

	h.LeaderboardUC = leaderboard.UseCase{
		Objects:       client,
		Drainer:       drainer,
		StateObjectID: cfg.Sui.StateObjectID,
		FetchSize:     cfg.Sui.PageSize,
	}
	h.WatchListUC = watchlist.UseCase{
		Objects:       client,
		Drainer:       drainer,
		StateObjectID: cfg.Sui.StateObjectID,
		FetchSize:     cfg.Sui.PageSize,
		Concurrency:   cfg.Sui.DetailConcurrency,
	}
	h.BalanceUC = balance.UseCase{Balances: client, CoinType: cfg.Sui.CoinType}
	if cfg.Sui.StateObjectID == "" {
		log.Println("DECEIT_SUI_STATE_OBJECT_ID not set; leaderboard and game list are disabled")
	}
	return nil
}
