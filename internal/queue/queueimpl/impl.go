package queueimpl

import (
	"context"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/repositories/published"
	"github.com/curatorbot/autopost-engine/internal/repositories/queueitem"
	"github.com/curatorbot/autopost-engine/pkg/config"
	appErrors "github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	QueueItemRepo queueitem.Repository
	PublishedRepo published.Repository
	Clock         clockwork.Clock
	Config        *config.Config
	Logger        logger.Logger
}

type ServiceImpl struct {
	QueueItemRepo queueitem.Repository
	PublishedRepo published.Repository
	Clock         clockwork.Clock
	ApprovalDelay time.Duration
	Logger        logger.Logger
}

func New(opts Opts) *ServiceImpl {
	return &ServiceImpl{
		QueueItemRepo: opts.QueueItemRepo,
		PublishedRepo: opts.PublishedRepo,
		Clock:         opts.Clock,
		ApprovalDelay: opts.Config.Scheduler.ApprovalDelay,
		Logger:        opts.Logger.WithComponent("PublishQueue"),
	}
}

var _ queue.Service = (*ServiceImpl)(nil)

// awaitingStatuses are the states in which an item can still be
// approved, rejected or edited by the owner.
var awaitingStatuses = []domain.Status{domain.StatusPending, domain.StatusSentForApproval}

func (s *ServiceImpl) Enqueue(ctx context.Context, req queue.NewItem) (*domain.QueueItem, error) {
	exists, err := s.QueueItemRepo.HasNonTerminal(ctx, req.OwnerID, req.ChannelLink)
	if err != nil {
		return nil, appErrors.Wrap(err, "check pending queue item")
	}
	if exists {
		return nil, appErrors.ErrAlreadyQueued
	}

	now := s.Clock.Now()
	item := domain.QueueItem{
		OwnerID:       req.OwnerID,
		ChannelLink:   req.ChannelLink,
		Text:          req.Text,
		MediaURL:      req.MediaURL,
		IsVideo:       req.IsVideo,
		Mode:          req.Mode,
		SourcePostID:  req.SourcePostID,
		SourceLink:    req.SourceLink,
		ScheduledTime: now,
		CreatedAt:     now,
	}

	switch req.Mode {
	case domain.ModeControlled:
		item.Status = domain.StatusPending
		item.ScheduledTime = now.Add(s.ApprovalDelay)
		if !req.ScheduledTime.IsZero() {
			item.ScheduledTime = req.ScheduledTime
		}
	default:
		item.Status = domain.StatusApproved
	}

	id, err := s.QueueItemRepo.Create(ctx, item)
	if err != nil {
		return nil, appErrors.Wrap(err, "create queue item")
	}
	item.ID = id

	s.Logger.Info("Queue item created",
		"id", id,
		"channel", req.ChannelLink,
		"status", item.Status,
		"mode", req.Mode,
	)
	return &item, nil
}

func (s *ServiceImpl) MarkSentForApproval(ctx context.Context, id int64) error {
	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, id, []domain.Status{domain.StatusPending}, domain.StatusSentForApproval)
	if err != nil {
		return appErrors.Wrap(err, "mark sent for approval")
	}
	if !ok {
		return appErrors.ErrAlreadyHandled
	}
	return nil
}

func (s *ServiceImpl) Approve(ctx context.Context, ownerID int64, channelLink string) (bool, error) {
	item, err := s.QueueItemRepo.LatestAwaitingApproval(ctx, ownerID, channelLink)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return false, nil
		}
		return false, appErrors.Wrap(err, "find awaiting item")
	}

	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, item.ID, awaitingStatuses, domain.StatusApproved)
	if err != nil {
		return false, appErrors.Wrap(err, "approve queue item")
	}
	if !ok {
		return false, nil
	}

	// Approval means "publish now", regardless of the slot the item was
	// originally given.
	if err := s.QueueItemRepo.SetScheduledTime(ctx, item.ID, s.Clock.Now()); err != nil {
		return false, appErrors.Wrap(err, "reset scheduled time")
	}

	s.Logger.Info("Queue item approved", "id", item.ID, "channel", channelLink)
	return true, nil
}

func (s *ServiceImpl) Reject(ctx context.Context, ownerID int64, channelLink string) (bool, error) {
	item, err := s.QueueItemRepo.LatestAwaitingApproval(ctx, ownerID, channelLink)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return false, nil
		}
		return false, appErrors.Wrap(err, "find awaiting item")
	}

	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, item.ID, awaitingStatuses, domain.StatusCancelled)
	if err != nil {
		return false, appErrors.Wrap(err, "reject queue item")
	}
	if ok {
		s.Logger.Info("Queue item rejected", "id", item.ID, "channel", channelLink)
	}
	return ok, nil
}

func (s *ServiceImpl) EditText(ctx context.Context, ownerID int64, channelLink string, text string) (bool, error) {
	item, err := s.QueueItemRepo.LatestAwaitingApproval(ctx, ownerID, channelLink)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return false, nil
		}
		return false, appErrors.Wrap(err, "find awaiting item")
	}

	ok, err := s.QueueItemRepo.SetText(ctx, item.ID, text)
	if err != nil {
		return false, appErrors.Wrap(err, "edit queue item text")
	}
	if ok {
		s.Logger.Info("Queue item text edited", "id", item.ID, "channel", channelLink)
	}
	return ok, nil
}

func (s *ServiceImpl) Claim(ctx context.Context, id int64) (bool, error) {
	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, id, []domain.Status{domain.StatusApproved}, domain.StatusPublishing)
	if err != nil {
		return false, appErrors.Wrap(err, "claim queue item")
	}
	return ok, nil
}

func (s *ServiceImpl) Finish(ctx context.Context, id int64, success bool) error {
	target := domain.StatusFailed
	if success {
		target = domain.StatusPublished
	}

	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, id, []domain.Status{domain.StatusPublishing}, target)
	if err != nil {
		return appErrors.Wrap(err, "finish queue item")
	}
	if !ok {
		return appErrors.ErrAlreadyHandled
	}

	if !success {
		s.Logger.Warn("Queue item failed to publish", "id", id)
		return nil
	}

	item, err := s.QueueItemRepo.GetByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, "load published item")
	}
	rec := domain.PublishedRecord{
		ChannelLink: item.ChannelLink,
		SourceLink:  item.SourceLink,
		Text:        item.Text,
		PublishedAt: s.Clock.Now(),
	}
	if err := s.PublishedRepo.Add(ctx, rec); err != nil {
		return appErrors.Wrap(err, "record published post")
	}

	s.Logger.Info("Queue item published", "id", id, "channel", item.ChannelLink)
	return nil
}

func (s *ServiceImpl) Cancel(ctx context.Context, id int64) (bool, error) {
	ok, err := s.QueueItemRepo.UpdateStatusIf(ctx, id, domain.NonTerminalStatuses(), domain.StatusCancelled)
	if err != nil {
		return false, appErrors.Wrap(err, "cancel queue item")
	}
	return ok, nil
}

func (s *ServiceImpl) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := s.Clock.Now().Add(-ttl)
	n, err := s.QueueItemRepo.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, "expire stale queue items")
	}
	if n > 0 {
		s.Logger.Info("Expired stale queue items", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

func (s *ServiceImpl) HasPending(ctx context.Context, ownerID int64, channelLink string) (bool, error) {
	return s.QueueItemRepo.HasNonTerminal(ctx, ownerID, channelLink)
}

func (s *ServiceImpl) GetPending(ctx context.Context, ownerID int64) ([]*domain.QueueItem, error) {
	return s.QueueItemRepo.ListNonTerminalByOwner(ctx, ownerID)
}

func (s *ServiceImpl) GetByID(ctx context.Context, id int64) (*domain.QueueItem, error) {
	return s.QueueItemRepo.GetByID(ctx, id)
}

func (s *ServiceImpl) GetHistory(ctx context.Context, channelLink string, since time.Time) ([]*domain.QueueItem, error) {
	return s.QueueItemRepo.ListHistory(ctx, channelLink, since)
}

func (s *ServiceImpl) DueForPublish(ctx context.Context, now time.Time) ([]*domain.QueueItem, error) {
	return s.QueueItemRepo.ListDue(ctx, domain.StatusApproved, now)
}
