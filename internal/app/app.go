package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/curatorbot/autopost-engine/internal/command"
	"github.com/curatorbot/autopost-engine/internal/command/commandimpl"
	"github.com/curatorbot/autopost-engine/internal/dedup"
	"github.com/curatorbot/autopost-engine/internal/dedup/dedupimpl"
	_ "github.com/curatorbot/autopost-engine/internal/migrations"
	"github.com/curatorbot/autopost-engine/internal/notifier"
	"github.com/curatorbot/autopost-engine/internal/notifier/notifierimpl"
	"github.com/curatorbot/autopost-engine/internal/pgx"
	"github.com/curatorbot/autopost-engine/internal/publisher"
	"github.com/curatorbot/autopost-engine/internal/publisher/publisherimpl"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/queue/queueimpl"
	repositories "github.com/curatorbot/autopost-engine/internal/repositories/fx"
	"github.com/curatorbot/autopost-engine/internal/rewriter"
	"github.com/curatorbot/autopost-engine/internal/rewriter/rewriterimpl"
	"github.com/curatorbot/autopost-engine/internal/scheduler"
	"github.com/curatorbot/autopost-engine/internal/scheduler/schedulerimpl"
	"github.com/curatorbot/autopost-engine/internal/selector"
	"github.com/curatorbot/autopost-engine/internal/selector/selectorimpl"
	"github.com/curatorbot/autopost-engine/internal/similarity"
	"github.com/curatorbot/autopost-engine/internal/similarity/similarityimpl"
	"github.com/curatorbot/autopost-engine/internal/telegram"
	"github.com/curatorbot/autopost-engine/internal/telegram/telegramimpl"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"google.golang.org/genai"
)

var App = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		newClock,
		newGenAIClient,
		newEmbedder,
		newHTTPServer,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			similarityimpl.New,
			fx.As(new(similarity.Scorer)),
		),
		fx.Annotate(
			selectorimpl.New,
			fx.As(new(selector.Client)),
		),
		fx.Annotate(
			dedupimpl.New,
			fx.As(new(dedup.Filter)),
		),
		fx.Annotate(
			queueimpl.New,
			fx.As(new(queue.Service)),
		),
		fx.Annotate(
			rewriterimpl.New,
			fx.As(new(rewriter.Client)),
		),
		fx.Annotate(
			publisherimpl.New,
			fx.As(new(publisher.Client)),
		),
		fx.Annotate(
			notifierimpl.New,
			fx.As(new(notifier.Client)),
		),
		fx.Annotate(
			schedulerimpl.New,
			fx.As(new(scheduler.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// newGenAIClient returns nil when no API key is configured; the scorer
// and the rewriter degrade to their fallbacks in that case.
func newGenAIClient(cfg *config.Config, log logger.Logger) (*genai.Client, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn("No Gemini API key configured, LLM features are degraded")
		return nil, nil
	}
	return genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func newEmbedder(client *genai.Client, cfg *config.Config) similarity.Embedder {
	if client == nil {
		return nil
	}
	return similarityimpl.NewGeminiEmbedder(client, cfg)
}

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are registered as Go functions; the directory only
	// anchors goose's version scan.
	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config,
	schedClient scheduler.Client, cmdClient command.Client, srv *httpServer) {
	appCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go srv.start()

			if err := schedClient.ScheduleProduction(appCtx); err != nil {
				log.Error("Failed to start production loop", "error", err)
				return err
			}
			if err := schedClient.SchedulePublishing(appCtx); err != nil {
				log.Error("Failed to start publish loop", "error", err)
				return err
			}
			if err := schedClient.ScheduleCleanup(appCtx); err != nil {
				log.Error("Failed to start cleanup job", "error", err)
				return err
			}

			go func() {
				for appCtx.Err() == nil {
					if err := cmdClient.HandleCommand(appCtx); err != nil && appCtx.Err() == nil {
						log.Error("Command handler exited, restarting", "error", err)
					}
				}
			}()

			log.Info("Autopost engine started", "env", cfg.App.Env)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return srv.stop(ctx)
		},
	})
}
