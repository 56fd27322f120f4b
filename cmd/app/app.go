package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oziev02/ThreadDigest/internal/config"
	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/database"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/llm"
)

// app содержит зависимости, общие для всех команд
type app struct {
	cfg    *config.Config
	repo   domain.ThreadRepository
	logger *slog.Logger
	close  func()
}

func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	repo, closeFn, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, repo: repo, logger: logger, close: closeFn}, nil
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ThreadRepository, func(), error) {
	if cfg.Storage.Type == config.StorageMemory {
		logger.Info("using in-memory storage")
		return database.NewMemoryRepository(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	repo := database.NewPostgresRepository(pool)
	if err := repo.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repo, pool.Close, nil
}

func (a *app) llmPool() (*llm.Pool, error) {
	backends, err := llm.LoadBackends(a.cfg.LLM.ModelsFile, a.logger)
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("%w: no usable entries in %s", llm.ErrNoBackendAvailable, a.cfg.LLM.ModelsFile)
	}

	return llm.NewPoolFromConfigs(backends, a.cfg.LLM.Timeout, llm.PoolOptions{
		MaxFailures: a.cfg.LLM.MaxFailures,
		RetryWait:   a.cfg.LLM.RetryWait,
	}, a.logger), nil
}
