package commandimpl

import (
	"context"
	"testing"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/repositories/channel"
	"github.com/curatorbot/autopost-engine/internal/telegram"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostIDPattern(t *testing.T) {
	match := postIDPattern.FindStringSubmatch("Post #42 for @channel\nScheduled: 15:04")
	require.NotNil(t, match)
	assert.Equal(t, "42", match[1])

	assert.Nil(t, postIDPattern.FindStringSubmatch("no marker here"))
	assert.Nil(t, postIDPattern.FindStringSubmatch("Post #x broken"))
}

type msgRecorder struct {
	telegram.Client
	texts []string
}

func (m *msgRecorder) SendMessage(_ int64, text string) (int, error) {
	m.texts = append(m.texts, text)
	return 1, nil
}

type historyQueue struct {
	queue.Service
	since time.Time
}

func (q *historyQueue) GetHistory(_ context.Context, _ string, since time.Time) ([]*domain.QueueItem, error) {
	q.since = since
	return nil, nil
}

type resetChannelRepo struct {
	channel.Repository
	resetAt time.Time
}

func (r *resetChannelRepo) ResetNextPostTime(_ context.Context, _ int64, now time.Time) (int64, error) {
	r.resetAt = now
	return 0, nil
}

func TestHandleHistoryUsesInjectedClock(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	q := &historyQueue{}
	c := &CommandImpl{
		Telegram: &msgRecorder{},
		Queue:    q,
		Clock:    clockwork.NewFakeClockAt(now),
		Logger:   logger.NewNop(),
	}

	c.handleHistory(context.Background(), 7, "@chan")

	assert.Equal(t, now.Add(-24*time.Hour), q.since)
}

func TestHandlePostNowUsesInjectedClock(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := &resetChannelRepo{}
	c := &CommandImpl{
		Telegram:    &msgRecorder{},
		ChannelRepo: repo,
		Clock:       clockwork.NewFakeClockAt(now),
		Logger:      logger.NewNop(),
	}

	c.handlePostNow(context.Background(), 7)

	assert.Equal(t, now, repo.resetAt)
}
