package schedulerimpl

import (
	"context"
	"sync"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/panjf2000/ants/v2"
)

const publishWorkers = 3

// RunPublishCycle expires stale approval requests, then publishes every
// approved item whose slot has passed. Items are claimed one by one, so
// overlapping cycles cannot double-publish.
func (s *SchedulerImpl) RunPublishCycle(ctx context.Context) {
	if _, err := s.Queue.ExpireStale(ctx, s.Config.Scheduler.ApprovalTTL); err != nil {
		s.Logger.Error("Failed to expire stale items", "error", err)
	}

	due, err := s.Queue.DueForPublish(ctx, s.Clock.Now())
	if err != nil {
		s.Logger.Error("Failed to list due items", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	s.Logger.Info("Publishing due items", "count", len(due))

	pool, err := ants.NewPool(publishWorkers, ants.WithPreAlloc(true))
	if err != nil {
		s.Logger.Error("Failed to create publish pool, publishing sequentially", "error", err)
		for _, item := range due {
			if ctx.Err() != nil {
				return
			}
			s.publishItem(ctx, item)
		}
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup

	for _, item := range due {
		itemToPublish := item
		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				s.Logger.Info("Skipping publish due to context cancellation", "id", itemToPublish.ID)
			default:
				s.publishItem(ctx, itemToPublish)
			}
		})
		if err != nil {
			wg.Done()
			s.Logger.Error("Failed to submit publish job", "id", itemToPublish.ID, "error", err)
		}
	}

	wg.Wait()
}

func (s *SchedulerImpl) publishItem(ctx context.Context, item *domain.QueueItem) {
	claimed, err := s.Queue.Claim(ctx, item.ID)
	if err != nil {
		s.Logger.Error("Failed to claim item", "id", item.ID, "error", err)
		return
	}
	if !claimed {
		s.Logger.Debug("Claim lost to another worker", "id", item.ID)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, s.Config.Scheduler.PublishTimeout)
	pubErr := s.Publisher.Publish(pubCtx, item.ChannelLink, item.Text, item.MediaURL, item.IsVideo)
	cancel()

	success := pubErr == nil
	if !success {
		s.Logger.Error("Publish attempt failed", "id", item.ID, "channel", item.ChannelLink, "error", pubErr)
	}

	if err := s.Queue.Finish(ctx, item.ID, success); err != nil {
		s.Logger.Error("Failed to finish item", "id", item.ID, "error", err)
		return
	}

	// Owners of controlled channels always hear back; automatic mode
	// only reports failures.
	if item.Mode == domain.ModeControlled || !success {
		nCtx, cancel := context.WithTimeout(ctx, s.Config.Scheduler.NotifyTimeout)
		defer cancel()
		if err := s.Notifier.NotifyPublishResult(nCtx, item, success); err != nil {
			s.Logger.Warn("Failed to notify publish result", "id", item.ID, "error", err)
		}
	}
}
