package rewriterimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/rewriter"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"go.uber.org/fx"
	"google.golang.org/genai"
)

type Opts struct {
	fx.In

	Client *genai.Client `optional:"true"`
	Config *config.Config
	Logger logger.Logger
}

type ClientImpl struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

func New(opts Opts) *ClientImpl {
	return &ClientImpl{
		client: opts.Client,
		model:  opts.Config.Gemini.ChatModel,
		logger: opts.Logger.WithComponent("Rewriter"),
	}
}

var _ rewriter.Client = (*ClientImpl)(nil)

// Rewrite runs the blocked-topic screen first, always, so a blocked
// post never reaches the model with a rewrite prompt. Screening and
// rewriting are separate model calls.
//
// A model failure aborts the whole operation: unrewritten scraped text
// must never reach the queue, so the caller retries on its next cycle.
func (c *ClientImpl) Rewrite(ctx context.Context, req rewriter.Request) (*rewriter.Result, error) {
	if blocked, reason := c.screen(ctx, req.Text, req.BlockedTopics); blocked {
		return &rewriter.Result{Blocked: true, BlockedReason: reason}, nil
	}

	text, err := c.rewriteText(ctx, req)
	if err != nil {
		return nil, errors.Transient(err, "rewrite")
	}
	return &rewriter.Result{Text: text}, nil
}

// screen asks the model for a JSON verdict; on any model or parse
// failure it falls back to a case-insensitive keyword match so a model
// outage can never let blocked content through.
func (c *ClientImpl) screen(ctx context.Context, text string, blockedTopics []string) (bool, string) {
	if len(blockedTopics) == 0 {
		return false, ""
	}

	if c.client != nil {
		verdict, err := c.modelVerdict(ctx, text, blockedTopics)
		if err == nil {
			return verdict.Blocked, verdict.Reason
		}
		c.logger.Warn("Topic screen model call failed, using keyword fallback", "error", err)
	}

	lower := strings.ToLower(text)
	for _, topic := range blockedTopics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(topic)) {
			return true, fmt.Sprintf("contains blocked topic %q", topic)
		}
	}
	return false, ""
}

type screenVerdict struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

func (c *ClientImpl) modelVerdict(ctx context.Context, text string, blockedTopics []string) (*screenVerdict, error) {
	prompt := fmt.Sprintf(
		"You are a content moderator. Blocked topics: %s.\n"+
			"Answer with JSON only, no markdown: {\"blocked\": true|false, \"reason\": \"short reason or empty\"}.\n"+
			"Is the following post about any blocked topic?\n\n%s",
		strings.Join(blockedTopics, ", "), text,
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)},
	)
	if err != nil {
		return nil, err
	}

	raw := stripCodeFence(resp.Text())
	var verdict screenVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("unparseable verdict %q: %w", raw, err)
	}
	return &verdict, nil
}

func (c *ClientImpl) rewriteText(ctx context.Context, req rewriter.Request) (string, error) {
	if c.client == nil {
		return req.Text, nil
	}

	role := strings.TrimSpace(req.PersonaRole)
	if role == "" {
		role = domain.DefaultPersonaRole
	}

	prompt := fmt.Sprintf(
		"Rewrite the following post for a Telegram channel. Keep the meaning and the facts, "+
			"improve clarity and flow, do not add hashtags or emojis that were not there. "+
			"Reply with the rewritten text only.\n\n%s",
		req.Text,
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(role, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned empty rewrite")
	}
	return text, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
