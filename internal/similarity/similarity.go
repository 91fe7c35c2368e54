package similarity

import "context"

// Scorer computes a similarity score in [0,1] between two texts. Empty
// or very short inputs score 0; the scorer never errors, falling back
// to lexical overlap when the embedding backend is unavailable.
//
//go:generate go run go.uber.org/mock/mockgen -source=similarity.go -destination=mocks/mock.go
type Scorer interface {
	Similarity(ctx context.Context, a, b string) float64
}

// Embedder produces a dense semantic vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
