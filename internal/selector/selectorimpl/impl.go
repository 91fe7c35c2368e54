package selectorimpl

import (
	"context"
	"sort"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/repositories/sourcepost"
	"github.com/curatorbot/autopost-engine/internal/selector"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	SourcePostRepo sourcepost.Repository
	Logger         logger.Logger
	Config         *config.Config
}

type SelectorImpl struct {
	SourcePostRepo sourcepost.Repository
	Logger         logger.Logger
	MinLength      int
}

func New(opts Opts) *SelectorImpl {
	return &SelectorImpl{
		SourcePostRepo: opts.SourcePostRepo,
		Logger:         opts.Logger.WithComponent("CandidateSelector"),
		MinLength:      opts.Config.Dedup.MinContentLength,
	}
}

var _ selector.Client = (*SelectorImpl)(nil)

func (s *SelectorImpl) Select(ctx context.Context, cfg *domain.ChannelAutopostConfig, limit int) ([]*domain.SourcePost, error) {
	pool, err := s.SourcePostRepo.ListUnusedByOwner(ctx, cfg.OwnerID, 0)
	if err != nil {
		return nil, err
	}

	candidates := Pick(cfg, pool, limit, s.MinLength)
	s.Logger.Debug("Candidate selection finished",
		"channel", cfg.ChannelLink,
		"pool_size", len(pool),
		"selected", len(candidates),
	)
	return candidates, nil
}

// Pick applies eligibility, source admission and ordering to a pool.
// It is a pure function of its inputs.
//
// Admission rules: manual selection admits only the explicitly listed
// source ids; auto selection admits sources whose topics intersect the
// channel's. If topic matching admits nothing, the whole owner pool is
// admitted instead, so a misconfigured topic list degrades to
// "anything of mine" rather than silent starvation.
func Pick(cfg *domain.ChannelAutopostConfig, pool []*domain.SourcePost, limit, minLength int) []*domain.SourcePost {
	eligible := lo.Filter(pool, func(p *domain.SourcePost, _ int) bool {
		return usable(p, minLength)
	})

	var admitted []*domain.SourcePost
	switch cfg.SourceSelection {
	case domain.SelectionManual:
		admitted = lo.Filter(eligible, func(p *domain.SourcePost, _ int) bool {
			return lo.Contains(cfg.SelectedSourceIDs, p.SourceID)
		})
	default:
		admitted = lo.Filter(eligible, func(p *domain.SourcePost, _ int) bool {
			return topicsIntersect(p.Topics, cfg.Topics)
		})
		if len(admitted) == 0 {
			admitted = eligible
		}
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		if admitted[i].Engagement() != admitted[j].Engagement() {
			return admitted[i].Engagement() > admitted[j].Engagement()
		}
		return admitted[i].PublishedAt.After(admitted[j].PublishedAt)
	})

	if limit > 0 && len(admitted) > limit {
		admitted = admitted[:limit]
	}
	return admitted
}

// usable drops candidates that cannot be published: already used,
// missing text or link, or below the content-length floor.
func usable(p *domain.SourcePost, minLength int) bool {
	if p == nil || p.Used {
		return false
	}
	if p.PostLink == "" || p.Text == "" {
		return false
	}
	return len([]rune(p.Text)) >= minLength
}

func topicsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return len(lo.Intersect(a, b)) > 0
}
