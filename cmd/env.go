package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/ingest"
	"github.com/sells-group/cvpa-audit/internal/nlp"
	"github.com/sells-group/cvpa-audit/internal/pipeline"
	"github.com/sells-group/cvpa-audit/internal/scoring"
	"github.com/sells-group/cvpa-audit/internal/store"
	anthropicpkg "github.com/sells-group/cvpa-audit/pkg/anthropic"
)

// auditEnv holds the initialized store, engine, and pipeline shared by the
// audit-running commands. Callers should defer env.Close().
type auditEnv struct {
	Store    store.Store
	Engine   *scoring.Engine
	Pipeline *pipeline.Pipeline
}

func (e *auditEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "cvpa.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, the scoring engine, and the full audit
// pipeline. The Claude-backed promise extractor is used when an Anthropic
// key is configured; otherwise extraction stays rule-based.
func initEnv(ctx context.Context) (*auditEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	if err := scoring.ValidateConfig(cfg.Scoring); err != nil {
		_ = st.Close()
		return nil, err
	}
	engine := scoring.NewEngine(st, st, st, st, cfg.Scoring)

	snap := ingest.NewSnapshotter(ingest.SnapshotOptions{
		UserAgent:         cfg.Collect.UserAgent,
		Timeout:           time.Duration(cfg.Collect.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Collect.RatePerSec,
	})

	var extractor pipeline.Extractor
	if cfg.Anthropic.Key != "" {
		extractor = nlp.NewClaudeExtractor(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
		zap.L().Debug("using claude promise extractor", zap.String("model", cfg.Anthropic.Model))
	}

	return &auditEnv{
		Store:    st,
		Engine:   engine,
		Pipeline: pipeline.New(cfg, st, engine, snap, extractor),
	}, nil
}
