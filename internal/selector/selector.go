package selector

import (
	"context"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

// Client picks eligible, not-yet-used candidates for a channel. An
// empty result means "skip this cycle", never an error condition.
//
//go:generate go run go.uber.org/mock/mockgen -source=selector.go -destination=mocks/mock.go
type Client interface {
	// Select fetches the owner's pool and returns the ordered candidate
	// list for the channel, truncated to limit.
	Select(ctx context.Context, cfg *domain.ChannelAutopostConfig, limit int) ([]*domain.SourcePost, error)
}
