package similarityimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestSimilarityShortInputs(t *testing.T) {
	s := New(Opts{Logger: logger.NewNop()})

	assert.Zero(t, s.Similarity(context.Background(), "", "anything long enough"))
	assert.Zero(t, s.Similarity(context.Background(), "short", "also long enough text"))
	assert.Zero(t, s.Similarity(context.Background(), "   padded   ", "also long enough text"))
}

func TestSimilarityJaccardFallback(t *testing.T) {
	s := New(Opts{Logger: logger.NewNop()})

	t.Run("identical", func(t *testing.T) {
		got := s.Similarity(context.Background(), "breaking news about markets", "breaking news about markets")
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("disjoint", func(t *testing.T) {
		got := s.Similarity(context.Background(), "breaking news about markets", "weather forecast tomorrow rain")
		assert.Zero(t, got)
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		got := s.Similarity(context.Background(), "Breaking News, about markets!", "breaking news about markets")
		assert.InDelta(t, 1.0, got, 1e-9)
	})
}

func TestSimilarityCosineOverEmbeddings(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"first long enough text":  {1, 0, 0},
		"second long enough text": {1, 0, 0},
		"third long enough text":  {0, 1, 0},
	}}
	s := New(Opts{Embedder: emb, Logger: logger.NewNop()})

	same := s.Similarity(context.Background(), "first long enough text", "second long enough text")
	assert.InDelta(t, 1.0, same, 1e-6)

	orthogonal := s.Similarity(context.Background(), "first long enough text", "third long enough text")
	assert.InDelta(t, 0.0, orthogonal, 1e-6)
}

func TestSimilarityEmbeddingCache(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"first long enough text":  {1, 0},
		"second long enough text": {0, 1},
	}}
	s := New(Opts{Embedder: emb, Logger: logger.NewNop()})

	s.Similarity(context.Background(), "first long enough text", "second long enough text")
	s.Similarity(context.Background(), "first long enough text", "second long enough text")
	assert.Equal(t, 2, emb.calls)
}

func TestSimilarityFallsBackOnEmbedderError(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("backend down")}
	s := New(Opts{Embedder: emb, Logger: logger.NewNop()})

	got := s.Similarity(context.Background(), "breaking news about markets", "breaking news about markets")
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCosineEdgeCases(t *testing.T) {
	assert.Zero(t, cosine(nil, nil))
	assert.Zero(t, cosine([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosine([]float32{0, 0}, []float32{1, 1}))
}
