package rewriterimpl

import (
	"context"
	"testing"

	"github.com/curatorbot/autopost-engine/internal/rewriter"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newOffline(t *testing.T) *ClientImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Gemini.ChatModel = "gemini-2.0-flash"
	return New(Opts{Config: cfg, Logger: logger.NewNop()})
}

func TestRewritePassthroughWithoutModel(t *testing.T) {
	c := newOffline(t)

	res, err := c.Rewrite(context.Background(), rewriter.Request{
		Text: "original post text",
	})
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.Equal(t, "original post text", res.Text)
}

func TestRewriteKeywordScreenBlocks(t *testing.T) {
	c := newOffline(t)

	res, err := c.Rewrite(context.Background(), rewriter.Request{
		Text:          "Huge CRYPTO giveaway, join now",
		BlockedTopics: []string{"crypto", "casino"},
	})
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Contains(t, res.BlockedReason, "crypto")
	assert.Empty(t, res.Text)
}

func TestRewriteScreenIgnoresBlankTopics(t *testing.T) {
	c := newOffline(t)

	res, err := c.Rewrite(context.Background(), rewriter.Request{
		Text:          "plain update about the weather",
		BlockedTopics: []string{"  ", ""},
	})
	require.NoError(t, err)
	assert.False(t, res.Blocked)
}

func TestRewriteNoTopicsNoScreen(t *testing.T) {
	c := newOffline(t)

	res, err := c.Rewrite(context.Background(), rewriter.Request{
		Text: "anything goes here",
	})
	require.NoError(t, err)
	assert.False(t, res.Blocked)
}

// A configured model that fails must abort the rewrite: returning the
// scraped text as a success would let it reach the queue unrewritten.
func TestRewriteModelFailureAborts(t *testing.T) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Gemini.ChatModel = "gemini-2.0-flash"
	c := New(Opts{Client: client, Config: cfg, Logger: logger.NewNop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.Rewrite(ctx, rewriter.Request{Text: "original post text"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsTransient(err))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"blocked": false}`, stripCodeFence(`{"blocked": false}`))
	assert.Equal(t, `{"blocked": true}`, stripCodeFence("```json\n{\"blocked\": true}\n```"))
	assert.Equal(t, `{"blocked": true}`, stripCodeFence("```\n{\"blocked\": true}\n```"))
}
