package channel

import (
	"context"
	"errors"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

var ErrNotFound = errors.New("channel config not found")

//go:generate go run go.uber.org/mock/mockgen -source=channel.go -destination=mocks/mock.go
type Repository interface {
	// Upsert creates or replaces the autopost settings for
	// (owner, channel).
	Upsert(ctx context.Context, cfg domain.ChannelAutopostConfig) error

	// Get returns the settings for one (owner, channel) pair.
	Get(ctx context.Context, ownerID int64, channelLink string) (*domain.ChannelAutopostConfig, error)

	// ListActive returns every active config, regardless of owner.
	ListActive(ctx context.Context) ([]*domain.ChannelAutopostConfig, error)

	// ListByOwner returns all of an owner's configs.
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.ChannelAutopostConfig, error)

	// SetActive pauses or resumes autoposting for a channel.
	SetActive(ctx context.Context, ownerID int64, channelLink string, active bool) error

	// SetMode switches between automatic and controlled handling.
	SetMode(ctx context.Context, ownerID int64, channelLink string, mode domain.Mode) error

	// SetNextPostTime records when the production loop should visit the
	// channel again.
	SetNextPostTime(ctx context.Context, ownerID int64, channelLink string, t time.Time) error

	// ResetNextPostTime sets next_post_time to now for all of the
	// owner's active channels and reports how many were touched.
	ResetNextPostTime(ctx context.Context, ownerID int64, now time.Time) (int64, error)

	// Delete removes the settings entirely (explicit teardown only).
	Delete(ctx context.Context, ownerID int64, channelLink string) error
}
