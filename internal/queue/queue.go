package queue

import (
	"context"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

// NewItem is the enqueue request for a rewritten post.
type NewItem struct {
	OwnerID      int64
	ChannelLink  string
	Text         string
	MediaURL     string
	IsVideo      bool
	Mode         domain.Mode
	SourcePostID int64
	SourceLink   string
	// ScheduledTime is the earliest publish slot for controlled items;
	// automatic items are scheduled immediately.
	ScheduledTime time.Time
}

// Service owns the QueueItem lifecycle. All transitions are monotonic
// and terminal states are never overwritten.
//
//go:generate go run go.uber.org/mock/mockgen -source=queue.go -destination=mocks/mock.go
type Service interface {
	// Enqueue creates an item: approved for automatic mode, pending for
	// controlled. It refuses with ErrAlreadyQueued when a non-terminal
	// item already exists for the (owner, channel) pair.
	Enqueue(ctx context.Context, req NewItem) (*domain.QueueItem, error)

	// MarkSentForApproval records that the approval request was
	// dispatched to the owner.
	MarkSentForApproval(ctx context.Context, id int64) error

	// Approve moves the newest awaiting item for the pair to approved
	// and resets its scheduled time to now so the publish loop picks it
	// up promptly. Returns false when nothing was awaiting approval.
	Approve(ctx context.Context, ownerID int64, channelLink string) (bool, error)

	// Reject cancels the newest awaiting item for the pair.
	Reject(ctx context.Context, ownerID int64, channelLink string) (bool, error)

	// EditText replaces the text of the newest awaiting item in place,
	// without a status change.
	EditText(ctx context.Context, ownerID int64, channelLink string, text string) (bool, error)

	// Claim atomically moves approved -> publishing. Exactly one caller
	// wins; the rest observe false and treat it as a no-op.
	Claim(ctx context.Context, id int64) (bool, error)

	// Finish completes a publishing item: published (appending to the
	// published history) or failed. A failed publish is never rolled
	// back to approved, avoiding duplicate publish attempts.
	Finish(ctx context.Context, id int64, success bool) error

	// Cancel moves any non-terminal item to cancelled.
	Cancel(ctx context.Context, id int64) (bool, error)

	// ExpireStale moves approval-waiting items older than ttl to
	// expired.
	ExpireStale(ctx context.Context, ttl time.Duration) (int64, error)

	// HasPending reports whether a non-terminal item exists for the
	// pair; callers must check it before enqueueing.
	HasPending(ctx context.Context, ownerID int64, channelLink string) (bool, error)

	// GetPending returns the owner's in-flight items.
	GetPending(ctx context.Context, ownerID int64) ([]*domain.QueueItem, error)

	// GetByID returns a single item.
	GetByID(ctx context.Context, id int64) (*domain.QueueItem, error)

	// GetHistory returns a channel's items created since the given time.
	GetHistory(ctx context.Context, channelLink string, since time.Time) ([]*domain.QueueItem, error)

	// DueForPublish returns approved items whose scheduled time has
	// passed.
	DueForPublish(ctx context.Context, now time.Time) ([]*domain.QueueItem, error)
}
