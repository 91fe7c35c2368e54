package queueimpl

import (
	"context"
	"testing"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/repositories/queueitem"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memItemRepo is an in-memory queueitem.Repository with the same
// guarded-update semantics as the SQL implementation.
type memItemRepo struct {
	nextID int64
	items  map[int64]*domain.QueueItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[int64]*domain.QueueItem{}}
}

func (m *memItemRepo) Create(_ context.Context, item domain.QueueItem) (int64, error) {
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = &item
	return item.ID, nil
}

func (m *memItemRepo) GetByID(_ context.Context, id int64) (*domain.QueueItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, queueitem.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memItemRepo) UpdateStatusIf(_ context.Context, id int64, from []domain.Status, to domain.Status) (bool, error) {
	item, ok := m.items[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if item.Status == f {
			item.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memItemRepo) SetScheduledTime(_ context.Context, id int64, t time.Time) error {
	item, ok := m.items[id]
	if !ok || item.Status.Terminal() {
		return queueitem.ErrNotFound
	}
	item.ScheduledTime = t
	return nil
}

func (m *memItemRepo) SetText(_ context.Context, id int64, text string) (bool, error) {
	item, ok := m.items[id]
	if !ok {
		return false, nil
	}
	if item.Status != domain.StatusPending && item.Status != domain.StatusSentForApproval {
		return false, nil
	}
	item.Text = text
	return true, nil
}

func (m *memItemRepo) HasNonTerminal(_ context.Context, ownerID int64, channelLink string) (bool, error) {
	for _, item := range m.items {
		if item.OwnerID == ownerID && item.ChannelLink == channelLink && !item.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memItemRepo) ListNonTerminalByOwner(_ context.Context, ownerID int64) ([]*domain.QueueItem, error) {
	var out []*domain.QueueItem
	for _, item := range m.items {
		if item.OwnerID == ownerID && !item.Status.Terminal() {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memItemRepo) LatestAwaitingApproval(_ context.Context, ownerID int64, channelLink string) (*domain.QueueItem, error) {
	var latest *domain.QueueItem
	for _, item := range m.items {
		if item.OwnerID != ownerID || item.ChannelLink != channelLink {
			continue
		}
		if item.Status != domain.StatusPending && item.Status != domain.StatusSentForApproval {
			continue
		}
		if latest == nil || item.CreatedAt.After(latest.CreatedAt) {
			latest = item
		}
	}
	if latest == nil {
		return nil, queueitem.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memItemRepo) ListDue(_ context.Context, status domain.Status, before time.Time) ([]*domain.QueueItem, error) {
	var out []*domain.QueueItem
	for _, item := range m.items {
		if item.Status == status && !item.ScheduledTime.After(before) {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memItemRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, item := range m.items {
		awaiting := item.Status == domain.StatusPending || item.Status == domain.StatusSentForApproval
		if awaiting && item.CreatedAt.Before(cutoff) {
			item.Status = domain.StatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memItemRepo) ListHistory(_ context.Context, channelLink string, since time.Time) ([]*domain.QueueItem, error) {
	var out []*domain.QueueItem
	for _, item := range m.items {
		if item.ChannelLink == channelLink && !item.CreatedAt.Before(since) {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPublishedRepo struct {
	records []domain.PublishedRecord
}

func (m *memPublishedRepo) Add(_ context.Context, rec domain.PublishedRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memPublishedRepo) ListSince(_ context.Context, channelLink string, since time.Time) ([]*domain.PublishedRecord, error) {
	var out []*domain.PublishedRecord
	for i := range m.records {
		rec := m.records[i]
		if rec.ChannelLink == channelLink && !rec.PublishedAt.Before(since) {
			out = append(out, &rec)
		}
	}
	return out, nil
}

func newService(t *testing.T) (*ServiceImpl, *memItemRepo, *memPublishedRepo, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	items := newMemItemRepo()
	published := &memPublishedRepo{}

	cfg := &config.Config{}
	cfg.Scheduler.ApprovalDelay = 10 * time.Minute

	svc := New(Opts{
		QueueItemRepo: items,
		PublishedRepo: published,
		Clock:         clock,
		Config:        cfg,
		Logger:        logger.NewNop(),
	})
	return svc, items, published, clock
}

func newItem(mode domain.Mode) queue.NewItem {
	return queue.NewItem{
		OwnerID:      7,
		ChannelLink:  "@channel",
		Text:         "rewritten text",
		Mode:         mode,
		SourcePostID: 42,
		SourceLink:   "https://t.me/source/1",
	}
}

func TestEnqueueAutomaticIsApprovedImmediately(t *testing.T) {
	svc, _, _, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, item.Status)
	assert.Equal(t, clock.Now(), item.ScheduledTime)
}

func TestEnqueueControlledWaitsForApproval(t *testing.T) {
	svc, _, _, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, item.Status)
	assert.Equal(t, clock.Now().Add(10*time.Minute), item.ScheduledTime)
}

func TestEnqueueRefusesSecondInFlightItem(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)

	_, err = svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	assert.ErrorIs(t, err, errors.ErrAlreadyQueued)
}

func TestEnqueueAllowsAfterTerminal(t *testing.T) {
	svc, _, _, _ := newService(t)

	first, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)

	ok, err := svc.Reject(context.Background(), first.OwnerID, first.ChannelLink)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	assert.NoError(t, err)
}

func TestApproveResetsScheduledTime(t *testing.T) {
	svc, items, _, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	ok, err := svc.Approve(context.Background(), item.OwnerID, item.ChannelLink)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, clock.Now(), got.ScheduledTime)

	// Second approval finds nothing awaiting.
	ok, err = svc.Approve(context.Background(), item.OwnerID, item.ChannelLink)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEditTextOnlyWhileAwaiting(t *testing.T) {
	svc, items, _, _ := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)

	ok, err := svc.EditText(context.Background(), item.OwnerID, item.ChannelLink, "edited")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	_, err = svc.Approve(context.Background(), item.OwnerID, item.ChannelLink)
	require.NoError(t, err)

	ok, err = svc.EditText(context.Background(), item.OwnerID, item.ChannelLink, "too late")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimWinsExactlyOnce(t *testing.T) {
	svc, _, _, _ := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)

	first, err := svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, second)
}

func TestFinishSuccessAppendsPublishedRecord(t *testing.T) {
	svc, items, published, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Finish(context.Background(), item.ID, true))

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)

	require.Len(t, published.records, 1)
	assert.Equal(t, "@channel", published.records[0].ChannelLink)
	assert.Equal(t, "https://t.me/source/1", published.records[0].SourceLink)
	assert.Equal(t, clock.Now(), published.records[0].PublishedAt)
}

func TestFinishFailureNeverRollsBack(t *testing.T) {
	svc, items, published, _ := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Finish(context.Background(), item.ID, false))

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Empty(t, published.records)

	// The failed item never becomes claimable again.
	ok, err := svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinishOnTerminalItemReportsAlreadyHandled(t *testing.T) {
	svc, _, _, _ := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Finish(context.Background(), item.ID, true))

	err = svc.Finish(context.Background(), item.ID, false)
	assert.ErrorIs(t, err, errors.ErrAlreadyHandled)
}

func TestCancelLeavesTerminalAlone(t *testing.T) {
	svc, items, _, _ := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), item.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Finish(context.Background(), item.ID, true))

	ok, err := svc.Cancel(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
}

func TestExpireStale(t *testing.T) {
	svc, items, _, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeControlled))
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	n, err := svc.ExpireStale(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)
}

func TestDueForPublish(t *testing.T) {
	svc, _, _, clock := newService(t)

	item, err := svc.Enqueue(context.Background(), newItem(domain.ModeAutomatic))
	require.NoError(t, err)

	due, err := svc.DueForPublish(context.Background(), clock.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, item.ID, due[0].ID)

	due, err = svc.DueForPublish(context.Background(), clock.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)
}
