package queueitem

import (
	"context"
	"fmt"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/pkg/errors"
)

var ErrNotFound = fmt.Errorf("queue item: %w", errors.ErrNotFound)

//go:generate go run go.uber.org/mock/mockgen -source=queueitem.go -destination=mocks/mock.go
type Repository interface {
	// Create inserts a new item and returns its id.
	Create(ctx context.Context, item domain.QueueItem) (int64, error)

	// GetByID returns a single item.
	GetByID(ctx context.Context, id int64) (*domain.QueueItem, error)

	// UpdateStatusIf atomically moves the item from one of the given
	// statuses to the target status. It reports false when the item was
	// not in any of them, which callers treat as "already handled" or a
	// lost claim depending on the transition.
	UpdateStatusIf(ctx context.Context, id int64, from []domain.Status, to domain.Status) (bool, error)

	// SetScheduledTime updates the publish slot of a non-terminal item.
	SetScheduledTime(ctx context.Context, id int64, t time.Time) error

	// SetText edits the text in place; only permitted while the item is
	// awaiting approval.
	SetText(ctx context.Context, id int64, text string) (bool, error)

	// HasNonTerminal reports whether an in-flight item exists for the
	// (owner, channel) pair.
	HasNonTerminal(ctx context.Context, ownerID int64, channelLink string) (bool, error)

	// ListNonTerminalByOwner returns the owner's in-flight items.
	ListNonTerminalByOwner(ctx context.Context, ownerID int64) ([]*domain.QueueItem, error)

	// LatestAwaitingApproval returns the newest item in
	// sent_for_approval (or pending) for the pair, if any.
	LatestAwaitingApproval(ctx context.Context, ownerID int64, channelLink string) (*domain.QueueItem, error)

	// ListDue returns items in the given status whose scheduled time has
	// passed, oldest first.
	ListDue(ctx context.Context, status domain.Status, before time.Time) ([]*domain.QueueItem, error)

	// ExpireOlderThan moves approval-waiting items created before the
	// cutoff to expired and reports how many were touched.
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// ListHistory returns items for a channel created since the given
	// time, newest first.
	ListHistory(ctx context.Context, channelLink string, since time.Time) ([]*domain.QueueItem, error)
}
