package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/epharma/triage/internal/config"
	"github.com/epharma/triage/internal/engine"
	"github.com/epharma/triage/pkg/adapters/memory"
	"github.com/epharma/triage/pkg/adapters/openai"
	"github.com/epharma/triage/pkg/adapters/postgres"
	redisstore "github.com/epharma/triage/pkg/adapters/redis"
	"github.com/epharma/triage/pkg/graph"
	"github.com/epharma/triage/pkg/session"
)

// BuildEngine wires the intake engine from configuration: graph, session
// store, catalog, report sink and the AI collaborator. The returned cleanup
// closes whatever connections were opened.
func BuildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	g, err := graph.Load(cfg.GraphPath, graph.WithCanonicalLanguage(cfg.Language))
	if err != nil {
		return nil, nil, fmt.Errorf("error loading question graph: %w", err)
	}
	for _, warning := range g.Warnings() {
		logger.Warn("question graph lint", "warning", warning)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Session store: Redis when configured, in-memory otherwise. Redis also
	// contributes the cross-instance session lock.
	managerOpts := []session.Option{session.WithLogger(logger)}
	var sessions *session.Manager
	if cfg.Redis.Addr == "" {
		sessions = session.NewManager(memory.NewStore(), managerOpts...)
	} else {
		rs := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithTTL(cfg.Redis.SessionTTL.Std()))
		closers = append(closers, func() { rs.Close() })
		managerOpts = append(managerOpts, session.WithLocker(redisstore.NewLocker(rs.Client(), "triage:lock:")))
		sessions = session.NewManager(rs, managerOpts...)
	}

	engineOpts := []engine.Option{engine.WithLogger(logger)}

	// Postgres contributes the medicine catalog and the report sink.
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("error connecting to postgres: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("error migrating postgres schema: %w", err)
		}
		engineOpts = append(engineOpts,
			engine.WithCatalog(postgres.NewCatalog(db)),
			engine.WithReportSink(postgres.NewReportSink(db)))
	}

	// The AI collaborator is optional: without a key the engine simply runs
	// without analysis and translation.
	if os.Getenv("OPENAI_API_KEY") != "" {
		if cfg.OpenAI.Model != "" && os.Getenv("OPENAI_MODEL") == "" {
			os.Setenv("OPENAI_MODEL", cfg.OpenAI.Model)
		}
		client := openai.NewClient()
		engineOpts = append(engineOpts,
			engine.WithAssistant(client),
			engine.WithTranslator(client))
	} else {
		logger.Info("OPENAI_API_KEY not set, AI assistance disabled")
	}

	return engine.New(g, sessions, engineOpts...), cleanup, nil
}
