package sourcepost

import (
	"context"
	"errors"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

var ErrNotFound = errors.New("source post not found")

//go:generate go run go.uber.org/mock/mockgen -source=sourcepost.go -destination=mocks/mock.go
type Repository interface {
	// Save upserts harvested posts. Engagement metrics are refreshed for
	// existing rows; the used flag is never touched by an upsert.
	Save(ctx context.Context, posts []domain.SourcePost) error

	// ListUnusedByOwner returns the owner's unused pool, engagement first.
	ListUnusedByOwner(ctx context.Context, ownerID int64, limit int) ([]*domain.SourcePost, error)

	// GetByID returns a single post.
	GetByID(ctx context.Context, id int64) (*domain.SourcePost, error)

	// MarkUsed flips the used flag. The flag is monotonic: there is no
	// operation that resets it.
	MarkUsed(ctx context.Context, id int64) error

	// CleanupOldRecords deletes unused posts older than the duration.
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
