package dedup

import (
	"context"

	"github.com/curatorbot/autopost-engine/internal/domain"
)

// Filter rejects candidates that are semantically too similar to each
// other or to recently published content. Thresholds always come from
// the caller: batch screening and single-candidate admission use
// different values by design.
//
//go:generate go run go.uber.org/mock/mockgen -source=dedup.go -destination=mocks/mock.go
type Filter interface {
	// FilterBatch collapses near-duplicate clusters among the candidates
	// themselves, keeping the highest-engagement representative of each.
	FilterBatch(ctx context.Context, candidates []*domain.SourcePost, threshold float64) []*domain.SourcePost

	// FilterUnique collapses the batch with collapseThreshold, then
	// returns the first survivor whose similarity to every published
	// record stays below admissionThreshold, or nil when no unique
	// content is available today.
	FilterUnique(ctx context.Context, candidates []*domain.SourcePost, publishedToday []*domain.PublishedRecord, collapseThreshold, admissionThreshold float64) *domain.SourcePost
}
