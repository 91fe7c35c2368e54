package similarityimpl

import (
	"context"
	"fmt"

	"github.com/curatorbot/autopost-engine/internal/similarity"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"google.golang.org/genai"
)

// GeminiEmbedder produces dense vectors via the Gemini embedding model
// with a fixed output dimensionality.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(client *genai.Client, cfg *config.Config) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:    client,
		model:     cfg.Gemini.EmbedModel,
		dimension: cfg.Gemini.EmbedDimension,
	}
}

var _ similarity.Embedder = (*GeminiEmbedder)(nil)

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	outputDim := int32(g.dimension)
	result, err := g.client.Models.EmbedContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	embedding := result.Embeddings[0].Values
	if len(embedding) != g.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", g.dimension, len(embedding))
	}
	return embedding, nil
}
