package schedulerimpl

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/curatorbot/autopost-engine/internal/dedup"
	"github.com/curatorbot/autopost-engine/internal/notifier"
	"github.com/curatorbot/autopost-engine/internal/publisher"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/repositories/channel"
	"github.com/curatorbot/autopost-engine/internal/repositories/persona"
	"github.com/curatorbot/autopost-engine/internal/repositories/published"
	"github.com/curatorbot/autopost-engine/internal/repositories/sourcepost"
	"github.com/curatorbot/autopost-engine/internal/rewriter"
	"github.com/curatorbot/autopost-engine/internal/scheduler"
	"github.com/curatorbot/autopost-engine/internal/selector"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Selector      selector.Client
	Dedup         dedup.Filter
	Rewriter      rewriter.Client
	Publisher     publisher.Client
	Notifier      notifier.Client
	Queue         queue.Service
	ChannelRepo   channel.Repository
	PersonaRepo   persona.Repository
	PublishedRepo published.Repository
	SourceRepo    sourcepost.Repository
	Clock         clockwork.Clock
	Config        *config.Config
	Logger        logger.Logger
}

type SchedulerImpl struct {
	Selector      selector.Client
	Dedup         dedup.Filter
	Rewriter      rewriter.Client
	Publisher     publisher.Client
	Notifier      notifier.Client
	Queue         queue.Service
	ChannelRepo   channel.Repository
	PersonaRepo   persona.Repository
	PublishedRepo published.Repository
	SourceRepo    sourcepost.Repository
	Clock         clockwork.Clock
	Config        *config.Config
	Logger        logger.Logger

	pacing   Pacing
	location *time.Location

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(opts Opts) (*SchedulerImpl, error) {
	loc, err := time.LoadLocation(opts.Config.Scheduler.Timezone)
	if err != nil {
		loc = time.Local
		opts.Logger.Warn("Failed to load configured timezone, using local", "timezone", opts.Config.Scheduler.Timezone, "error", err)
	}

	sc := opts.Config.Scheduler
	return &SchedulerImpl{
		Selector:      opts.Selector,
		Dedup:         opts.Dedup,
		Rewriter:      opts.Rewriter,
		Publisher:     opts.Publisher,
		Notifier:      opts.Notifier,
		Queue:         opts.Queue,
		ChannelRepo:   opts.ChannelRepo,
		PersonaRepo:   opts.PersonaRepo,
		PublishedRepo: opts.PublishedRepo,
		SourceRepo:    opts.SourceRepo,
		Clock:         opts.Clock,
		Config:        opts.Config,
		Logger:        opts.Logger.WithComponent("Scheduler"),
		pacing: Pacing{
			Location:        loc,
			WindowStartHour: sc.WindowStartHour,
			WindowEndHour:   sc.WindowEndHour,
			DailyQuota:      sc.DailyQuota,
			Jitter:          sc.Jitter,
			FirstPostWindow: sc.FirstPostWindow,
		},
		location: loc,
		rng:      rand.New(rand.NewSource(opts.Clock.Now().UnixNano())),
	}, nil
}

var _ scheduler.Client = (*SchedulerImpl)(nil)

// ScheduleProduction runs the production cycle on a randomized
// interval so channel visits do not fall into a detectable rhythm.
func (s *SchedulerImpl) ScheduleProduction(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(s.location), gocron.WithClock(s.Clock))
	if err != nil {
		return fmt.Errorf("failed to create production scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationRandomJob(s.Config.Scheduler.ProductionTick, s.Config.Scheduler.ProductionTickTo),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.Logger.Info("Context cancelled, stopping production cycle")
				return
			}
			s.RunProductionCycle(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule production cycle: %w", err)
	}

	sched.Start()
	s.shutdownOnDone(ctx, sched, "production")
	return nil
}

func (s *SchedulerImpl) SchedulePublishing(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(s.location), gocron.WithClock(s.Clock))
	if err != nil {
		return fmt.Errorf("failed to create publish scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.Config.Scheduler.PublishTick),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.Logger.Info("Context cancelled, stopping publish cycle")
				return
			}
			s.RunPublishCycle(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule publish cycle: %w", err)
	}

	sched.Start()
	s.shutdownOnDone(ctx, sched, "publishing")
	return nil
}

// ScheduleCleanup deletes stale unused source posts every night at 3:00.
func (s *SchedulerImpl) ScheduleCleanup(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(s.location), gocron.WithClock(s.Clock))
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	const retention = 30 * 24 * time.Hour

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			deleted, err := s.SourceRepo.CleanupOldRecords(cleanupCtx, retention)
			if err != nil {
				s.Logger.Error("Source pool cleanup failed", "error", err)
				return
			}
			s.Logger.Info("Source pool cleanup completed", "rows_deleted", deleted)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	sched.Start()
	s.shutdownOnDone(ctx, sched, "cleanup")
	return nil
}

func (s *SchedulerImpl) shutdownOnDone(ctx context.Context, sched gocron.Scheduler, name string) {
	go func() {
		<-ctx.Done()
		s.Logger.Info("Stopping scheduler", "loop", name)
		if err := sched.Shutdown(); err != nil {
			s.Logger.Error("Failed to shut down scheduler", "loop", name, "error", err)
		}
	}()
}

func (s *SchedulerImpl) nextPostTime(prev time.Time) time.Time {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.pacing.NextPostTime(prev, s.rng)
}
