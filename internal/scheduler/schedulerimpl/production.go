package schedulerimpl

import (
	"context"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/rewriter"
	"github.com/curatorbot/autopost-engine/pkg/errors"
)

// RunProductionCycle visits every active channel whose slot has come
// and tries to produce exactly one post for it. The channel's next
// slot is advanced before any production work: a channel that fails a
// stage waits for its next slot like everyone else instead of being
// retried immediately.
func (s *SchedulerImpl) RunProductionCycle(ctx context.Context) {
	configs, err := s.ChannelRepo.ListActive(ctx)
	if err != nil {
		s.Logger.Error("Failed to list active channels", "error", err)
		return
	}

	visited := 0
	for _, cfg := range configs {
		if ctx.Err() != nil {
			return
		}

		now := s.Clock.Now()
		if now.Before(cfg.NextPostTime) {
			continue
		}
		if visited > 0 {
			s.Clock.Sleep(s.Config.Scheduler.ChannelDelay)
		}
		visited++

		next := s.nextPostTime(now)
		if err := s.ChannelRepo.SetNextPostTime(ctx, cfg.OwnerID, cfg.ChannelLink, next); err != nil {
			s.Logger.Error("Failed to advance next post time", "channel", cfg.ChannelLink, "error", err)
			continue
		}

		chCtx, cancel := context.WithTimeout(ctx, s.Config.Scheduler.ChannelTimeout)
		s.produceForChannel(chCtx, cfg)
		cancel()
	}
}

func (s *SchedulerImpl) produceForChannel(ctx context.Context, cfg *domain.ChannelAutopostConfig) {
	pending, err := s.Queue.HasPending(ctx, cfg.OwnerID, cfg.ChannelLink)
	if err != nil {
		s.Logger.Error("Failed to check pending queue", "channel", cfg.ChannelLink, "error", err)
		return
	}
	if pending {
		s.redispatchUndelivered(ctx, cfg)
		return
	}

	limit := cfg.CandidateLimit
	if limit <= 0 {
		limit = s.Config.Dedup.CandidateLimit
	}
	candidates, err := s.Selector.Select(ctx, cfg, limit)
	if err != nil {
		s.Logger.Error("Candidate selection failed", "channel", cfg.ChannelLink, "error", err)
		return
	}
	if len(candidates) == 0 {
		s.Logger.Debug("No eligible candidates", "channel", cfg.ChannelLink)
		return
	}

	history, err := s.PublishedRepo.ListSince(ctx, cfg.ChannelLink, s.startOfDay())
	if err != nil {
		s.Logger.Error("Failed to load published history", "channel", cfg.ChannelLink, "error", err)
		return
	}

	pick := s.Dedup.FilterUnique(ctx, candidates, history,
		s.Config.Dedup.CollapseThreshold, s.Config.Dedup.AdmissionThreshold)
	if pick == nil {
		s.Logger.Info("No unique content available for channel",
			"channel", cfg.ChannelLink,
			"candidates", len(candidates),
			"published_today", len(history),
		)
		return
	}

	res, err := s.rewrite(ctx, cfg, pick)
	if err != nil {
		s.Logger.Warn("Rewrite stage abandoned for this cycle", "channel", cfg.ChannelLink, "error", err)
		return
	}
	if res.Blocked {
		s.Logger.Info("Candidate blocked by topic screen, discarding",
			"channel", cfg.ChannelLink,
			"post_link", pick.PostLink,
			"reason", res.BlockedReason,
		)
		if err := s.SourceRepo.MarkUsed(ctx, pick.ID); err != nil {
			s.Logger.Error("Failed to mark blocked post used", "post_id", pick.ID, "error", err)
		}
		return
	}

	item, err := s.Queue.Enqueue(ctx, queue.NewItem{
		OwnerID:      cfg.OwnerID,
		ChannelLink:  cfg.ChannelLink,
		Text:         res.Text,
		MediaURL:     pick.MediaURL,
		IsVideo:      pick.IsVideo,
		Mode:         cfg.Mode,
		SourcePostID: pick.ID,
		SourceLink:   pick.PostLink,
	})
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyQueued) {
			s.Logger.Debug("Item appeared in queue concurrently, skipping", "channel", cfg.ChannelLink)
			return
		}
		s.Logger.Error("Failed to enqueue item", "channel", cfg.ChannelLink, "error", err)
		return
	}

	if err := s.SourceRepo.MarkUsed(ctx, pick.ID); err != nil {
		s.Logger.Error("Failed to mark source post used", "post_id", pick.ID, "error", err)
	}

	if cfg.Mode == domain.ModeControlled {
		s.requestApproval(ctx, item)
	}
}

func (s *SchedulerImpl) rewrite(ctx context.Context, cfg *domain.ChannelAutopostConfig, pick *domain.SourcePost) (*rewriter.Result, error) {
	role := cfg.PersonaRole
	if role == "" {
		stored, err := s.PersonaRepo.Get(ctx, cfg.OwnerID)
		if err != nil {
			s.Logger.Warn("Failed to load persona, using default", "owner", cfg.OwnerID, "error", err)
		} else {
			role = stored
		}
	}

	rwCtx, cancel := context.WithTimeout(ctx, s.Config.Scheduler.RewriteTimeout)
	defer cancel()

	return s.Rewriter.Rewrite(rwCtx, rewriter.Request{
		OwnerID:       cfg.OwnerID,
		Text:          pick.Text,
		PersonaRole:   role,
		BlockedTopics: cfg.BlockedTopics,
	})
}

// redispatchUndelivered re-sends the approval request for items still
// in pending: that status after the producing cycle means the original
// dispatch failed, and a channel must not stay silent until the TTL
// expires the item.
func (s *SchedulerImpl) redispatchUndelivered(ctx context.Context, cfg *domain.ChannelAutopostConfig) {
	items, err := s.Queue.GetPending(ctx, cfg.OwnerID)
	if err != nil {
		s.Logger.Error("Failed to load pending items", "channel", cfg.ChannelLink, "error", err)
		return
	}
	for _, item := range items {
		if item.ChannelLink != cfg.ChannelLink || item.Status != domain.StatusPending {
			continue
		}
		s.Logger.Info("Re-sending undelivered approval request", "id", item.ID, "channel", cfg.ChannelLink)
		s.requestApproval(ctx, item)
	}
}

func (s *SchedulerImpl) requestApproval(ctx context.Context, item *domain.QueueItem) {
	nCtx, cancel := context.WithTimeout(ctx, s.Config.Scheduler.NotifyTimeout)
	defer cancel()

	if err := s.Notifier.SendForApproval(nCtx, item); err != nil {
		// The item stays pending; the next production cycle re-sends the
		// request via redispatchUndelivered.
		s.Logger.Error("Failed to send approval request", "id", item.ID, "error", err)
		return
	}
	if err := s.Queue.MarkSentForApproval(ctx, item.ID); err != nil && !errors.Is(err, errors.ErrAlreadyHandled) {
		s.Logger.Error("Failed to mark item sent for approval", "id", item.ID, "error", err)
	}
}

func (s *SchedulerImpl) startOfDay() time.Time {
	now := s.Clock.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}
