package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/mimic/internal/anthropic"
	"github.com/MikeSquared-Agency/mimic/internal/api"
	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/patterns"
	"github.com/MikeSquared-Agency/mimic/internal/retrieval"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

// engine is the synthesis pipeline plus whatever must be closed on exit.
type engine struct {
	synth   *synth.Synthesizer
	info    api.StatusInfo
	closers []func()
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// buildEngine wires the generator, template ledger and exemplar index. db
// may be nil, in which case there is no semantic index and nothing is
// recorded.
func buildEngine(ctx context.Context, cfg config.Config, db *store.Store, logger *slog.Logger) (*engine, error) {
	e := &engine{info: api.StatusInfo{Generator: "templates", Ledger: "memory", Index: "none"}}

	var ledger patterns.Ledger = patterns.NewMemoryLedger()
	if cfg.RedisURL != "" {
		rl, err := patterns.NewRedisLedger(cfg.RedisURL, cfg.LedgerTTL)
		if err != nil {
			return nil, fmt.Errorf("create redis ledger: %w", err)
		}
		if err := rl.Ping(ctx); err != nil {
			rl.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		ledger = rl
		e.info.Ledger = "redis"
		e.closers = append(e.closers, func() { rl.Close() })
		logger.Info("template ledger on redis", "ttl", cfg.LedgerTTL)
	}
	lib := patterns.NewLibrary(ledger, logger)

	var gen synth.Generator
	if cfg.AnthropicAPIKey != "" {
		gen = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		e.info.Generator = "anthropic:" + cfg.AnthropicModel
		logger.Info("anthropic client ready", "model", cfg.AnthropicModel)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, replies come from templates")
	}

	var (
		index *retrieval.Index
		rec   synth.Recorder
	)
	if db != nil {
		index = retrieval.NewIndex(db, cfg.SearchTimeout, logger)
		rec = db
		e.info.Index = "postgres"
	}

	e.synth = synth.New(gen, index, lib, rec, synth.Config{
		MaxAttempts:    cfg.MaxAttempts,
		AttemptTimeout: cfg.AttemptTimeout,
	}, logger)
	return e, nil
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
