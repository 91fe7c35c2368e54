package similarityimpl

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/curatorbot/autopost-engine/internal/similarity"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"go.uber.org/fx"
)

// minComparableLength guards against scoring noise on trivial inputs.
const minComparableLength = 10

type Opts struct {
	fx.In

	Embedder similarity.Embedder `optional:"true"`
	Logger   logger.Logger
}

type ScorerImpl struct {
	embedder similarity.Embedder
	logger   logger.Logger

	mu    sync.Mutex
	cache map[string][]float32
}

func New(opts Opts) *ScorerImpl {
	return &ScorerImpl{
		embedder: opts.Embedder,
		logger:   opts.Logger.WithComponent("SimilarityScorer"),
		cache:    make(map[string][]float32),
	}
}

var _ similarity.Scorer = (*ScorerImpl)(nil)

// Similarity returns cosine similarity between the semantic embeddings
// of a and b, or Jaccard word overlap when no embedding backend is
// configured or the backend fails.
func (s *ScorerImpl) Similarity(ctx context.Context, a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if len(a) < minComparableLength || len(b) < minComparableLength {
		return 0
	}

	if s.embedder != nil {
		va, errA := s.embed(ctx, a)
		vb, errB := s.embed(ctx, b)
		if errA == nil && errB == nil {
			return cosine(va, vb)
		}
		err := errA
		if err == nil {
			err = errB
		}
		s.logger.Warn("Embedding backend unavailable, falling back to lexical overlap", "error", err)
	}

	return jaccard(a, b)
}

func (s *ScorerImpl) embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	if v, ok := s.cache[text]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[text] = v
	s.mu.Unlock()
	return v, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp: embeddings occasionally produce tiny numeric overshoot.
	return math.Max(0, math.Min(1, score))
}

func jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
