package dedupimpl

import (
	"context"
	"sort"

	"github.com/curatorbot/autopost-engine/internal/dedup"
	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/similarity"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Scorer similarity.Scorer
	Logger logger.Logger
}

type FilterImpl struct {
	Scorer similarity.Scorer
	Logger logger.Logger
}

func New(opts Opts) *FilterImpl {
	return &FilterImpl{
		Scorer: opts.Scorer,
		Logger: opts.Logger.WithComponent("DuplicateFilter"),
	}
}

var _ dedup.Filter = (*FilterImpl)(nil)

// FilterBatch walks the candidates in engagement order and keeps a
// candidate only if it clears the threshold against everything already
// kept. The walk is deterministic, so the highest-engagement member of
// each near-duplicate cluster always survives.
func (f *FilterImpl) FilterBatch(ctx context.Context, candidates []*domain.SourcePost, threshold float64) []*domain.SourcePost {
	ordered := make([]*domain.SourcePost, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Engagement() != ordered[j].Engagement() {
			return ordered[i].Engagement() > ordered[j].Engagement()
		}
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	var kept []*domain.SourcePost
	for _, cand := range ordered {
		duplicate := false
		for _, k := range kept {
			if f.Scorer.Similarity(ctx, cand.Text, k.Text) >= threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, cand)
		}
	}

	if len(kept) < len(candidates) {
		f.Logger.Debug("Collapsed near-duplicate candidates",
			"before", len(candidates),
			"after", len(kept),
			"threshold", threshold,
		)
	}
	return kept
}

// FilterUnique runs the internal collapse, then returns the first
// survivor that is not a near-duplicate of anything published today.
// Candidates that fail history rejection are left untouched and stay
// eligible for future cycles.
func (f *FilterImpl) FilterUnique(ctx context.Context, candidates []*domain.SourcePost, publishedToday []*domain.PublishedRecord, collapseThreshold, admissionThreshold float64) *domain.SourcePost {
	for _, cand := range f.FilterBatch(ctx, candidates, collapseThreshold) {
		if f.uniqueAgainstHistory(ctx, cand, publishedToday, admissionThreshold) {
			return cand
		}
	}
	return nil
}

func (f *FilterImpl) uniqueAgainstHistory(ctx context.Context, cand *domain.SourcePost, history []*domain.PublishedRecord, threshold float64) bool {
	for _, rec := range history {
		if score := f.Scorer.Similarity(ctx, cand.Text, rec.Text); score >= threshold {
			f.Logger.Debug("Candidate rejected against published history",
				"post_link", cand.PostLink,
				"score", score,
				"threshold", threshold,
			)
			return false
		}
	}
	return true
}
