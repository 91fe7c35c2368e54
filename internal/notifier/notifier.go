package notifier

import (
	"context"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

// Callback data prefixes shared with the command handler.
const (
	CallbackApprove = "autopost:approve:"
	CallbackReject  = "autopost:reject:"
)

//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=mocks/mock.go
type Client interface {
	// SendForApproval delivers the approval request for a pending item to
	// its owner, with approve/reject buttons.
	SendForApproval(ctx context.Context, item *domain.QueueItem) error

	// NotifyPublishResult tells the owner how a publish attempt ended.
	NotifyPublishResult(ctx context.Context, item *domain.QueueItem, success bool) error
}
