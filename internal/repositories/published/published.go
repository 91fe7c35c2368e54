package published

import (
	"context"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=published.go -destination=mocks/mock.go
type Repository interface {
	// Add appends a record; called exactly once per successful publish.
	Add(ctx context.Context, rec domain.PublishedRecord) error

	// ListSince returns records for a channel published at or after the
	// given time, newest first.
	ListSince(ctx context.Context, channelLink string, since time.Time) ([]*domain.PublishedRecord, error)
}
