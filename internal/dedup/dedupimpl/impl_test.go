package dedupimpl

import (
	"context"
	"testing"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScorer returns preset scores for text pairs and 0 for everything
// else.
type stubScorer struct {
	scores map[[2]string]float64
}

func (s *stubScorer) Similarity(_ context.Context, a, b string) float64 {
	if v, ok := s.scores[[2]string{a, b}]; ok {
		return v
	}
	if v, ok := s.scores[[2]string{b, a}]; ok {
		return v
	}
	return 0
}

func newFilter(scores map[[2]string]float64) *FilterImpl {
	return New(Opts{
		Scorer: &stubScorer{scores: scores},
		Logger: logger.NewNop(),
	})
}

func cand(text string, likes int) *domain.SourcePost {
	return &domain.SourcePost{Text: text, Likes: likes, PostLink: "https://t.me/s/" + text}
}

func TestFilterBatchCollapsesClusters(t *testing.T) {
	f := newFilter(map[[2]string]float64{
		{"a", "b"}: 0.95,
	})

	a := cand("a", 100)
	b := cand("b", 10)
	c := cand("c", 50)

	kept := f.FilterBatch(context.Background(), []*domain.SourcePost{b, c, a}, 0.90)
	require.Len(t, kept, 2)
	// The higher-engagement member of the (a, b) cluster survives.
	assert.Equal(t, "a", kept[0].Text)
	assert.Equal(t, "c", kept[1].Text)
}

func TestFilterBatchKeepsAllBelowThreshold(t *testing.T) {
	f := newFilter(map[[2]string]float64{
		{"a", "b"}: 0.60,
	})

	kept := f.FilterBatch(context.Background(), []*domain.SourcePost{cand("a", 2), cand("b", 1)}, 0.90)
	assert.Len(t, kept, 2)
}

func TestFilterUniqueRejectsAgainstHistory(t *testing.T) {
	f := newFilter(map[[2]string]float64{
		{"a", "published"}: 0.95,
		{"b", "published"}: 0.50,
	})

	history := []*domain.PublishedRecord{{Text: "published"}}
	candidates := []*domain.SourcePost{cand("a", 100), cand("b", 10)}

	got := f.FilterUnique(context.Background(), candidates, history, 0.90, 0.85)
	require.NotNil(t, got)
	// "a" wins on engagement but is too close to today's history, so the
	// next survivor is picked and "a" stays eligible for later.
	assert.Equal(t, "b", got.Text)
	assert.False(t, candidates[0].Used)
}

func TestFilterUniqueNoUniqueContent(t *testing.T) {
	f := newFilter(map[[2]string]float64{
		{"a", "published"}: 0.88,
	})

	got := f.FilterUnique(context.Background(),
		[]*domain.SourcePost{cand("a", 1)},
		[]*domain.PublishedRecord{{Text: "published"}},
		0.90, 0.85)
	assert.Nil(t, got)
}

func TestFilterUniqueEmptyHistory(t *testing.T) {
	f := newFilter(nil)

	got := f.FilterUnique(context.Background(), []*domain.SourcePost{cand("a", 1)}, nil, 0.90, 0.85)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Text)
}
