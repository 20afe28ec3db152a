package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
	"github.com/yanqian/property-valuator/internal/domain/valuation"
	"github.com/yanqian/property-valuator/internal/infra/agent"
	"github.com/yanqian/property-valuator/internal/infra/config"
	"github.com/yanqian/property-valuator/internal/infra/datasets"
	"github.com/yanqian/property-valuator/internal/infra/historystore"
	"github.com/yanqian/property-valuator/internal/infra/learning"
	apperrors "github.com/yanqian/property-valuator/pkg/errors"
)

const datasetLoadTimeout = 15 * time.Second

func provideValuationConfig(cfg *config.Config) valuation.Config {
	return valuation.Config{
		CityBasePrices:   cfg.Valuation.CityBasePrices,
		DefaultBasePrice: cfg.Valuation.DefaultBasePrice,
		RecordHistory:    cfg.Valuation.RecordHistory,
	}
}

func provideNQSConfig(cfg *config.Config) nqs.Config {
	return nqs.Config{
		AgentEnabled: cfg.NQS.AgentEnabled,
		AgentTimeout: cfg.NQS.AgentTimeout,
	}
}

func provideRemoteScorer(cfg *config.Config, logger *slog.Logger) nqs.RemoteScorer {
	if !cfg.NQS.AgentEnabled || strings.TrimSpace(cfg.NQS.AgentBaseURL) == "" {
		logger.Info("nqs agent disabled, scoring locally")
		return nil
	}
	logger.Info("nqs agent enabled", "base_url", cfg.NQS.AgentBaseURL)
	return agent.NewClient(cfg.NQS.AgentBaseURL, cfg.NQS.AgentAPIKey, cfg.NQS.AgentTimeout)
}

func provideNQSScorer(svc nqs.Service) valuation.NQSScorer {
	return svc
}

// provideDataset loads district tables once at startup. Remote sources fall
// back to the embedded copy so the service always boots with a dataset.
func provideDataset(cfg *config.Config, logger *slog.Logger) (nqs.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), datasetLoadTimeout)
	defer cancel()

	embedded := datasets.NewEmbeddedSource()
	var source datasets.Source = embedded

	switch cfg.Datasets.Source {
	case config.DatasetSourceR2:
		r2 := cfg.Datasets.R2
		obj, err := datasets.NewObjectSource(r2.Endpoint, r2.AccessKey, r2.SecretKey, r2.Bucket, r2.Region, r2.ObjectKey, logger)
		if err != nil {
			logger.Error("invalid r2 dataset configuration, using embedded dataset", "error", err)
			break
		}
		source = datasets.WithFallback(obj, embedded, logger)
	case config.DatasetSourcePostgres:
		pool, err := openPostgres(ctx, cfg.Datasets.Postgres, logger)
		if err != nil {
			logger.Error("postgres dataset source unavailable, using embedded dataset", "error", err)
			break
		}
		// Tables are immutable after startup, so the pool is only needed for this load.
		defer pool.Close()
		source = datasets.WithFallback(datasets.NewPostgresSource(pool), embedded, logger)
	}

	ds, err := source.Load(ctx)
	if err != nil {
		return nqs.Dataset{}, apperrors.Wrap(apperrors.CodeDataset, "load district dataset", err)
	}
	logger.Info("district dataset loaded", "source", cfg.Datasets.Source, "districts", len(ds.Districts))
	return ds, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres dataset source connected")
	return pool, nil
}

func provideHistoryStore(cfg *config.Config, logger *slog.Logger) (valuation.HistoryStore, func()) {
	fallback := historystore.NewMemoryStore(cfg.History.Capacity)
	if cfg.History.Backend != config.HistoryBackendValkey {
		return fallback, func() {}
	}
	client, err := connectValkey(cfg.History.Valkey.Addr)
	if err != nil {
		logger.Error("valkey history store unavailable, falling back to memory store", "error", err)
		return fallback, func() {}
	}
	logger.Info("valkey history store enabled", "addr", cfg.History.Valkey.Addr)
	return historystore.NewValkeyStore(client, cfg.History.Valkey.Key, cfg.History.Capacity), client.Close
}

func provideLearningHook(cfg *config.Config, logger *slog.Logger) (valuation.LearningHook, func()) {
	if !cfg.Learning.Enabled {
		return nil, func() {}
	}
	handler := learning.NewLogHandler(logger)
	if strings.TrimSpace(cfg.Learning.Valkey.Addr) == "" {
		return learning.NewImmediateQueue(handler), func() {}
	}
	client, err := connectValkey(cfg.Learning.Valkey.Addr)
	if err != nil {
		logger.Error("valkey learning queue unavailable, delivering in process", "error", err)
		return learning.NewImmediateQueue(handler), func() {}
	}
	queue := learning.NewValkeyQueue(client, cfg.Learning.Valkey.Key, handler, logger)
	logger.Info("valkey learning queue enabled", "addr", cfg.Learning.Valkey.Addr)
	return queue, func() {
		queue.Close()
		client.Close()
	}
}

func connectValkey(addr string) (valkey.Client, error) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
