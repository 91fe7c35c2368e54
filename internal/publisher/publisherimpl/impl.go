package publisherimpl

import (
	"context"
	"strings"

	"github.com/curatorbot/autopost-engine/internal/publisher"
	"github.com/curatorbot/autopost-engine/internal/telegram"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/formatter"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/curatorbot/autopost-engine/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram telegram.Client
	Logger   logger.Logger
}

type PublisherImpl struct {
	Telegram telegram.Client
	Logger   logger.Logger
}

func New(opts Opts) *PublisherImpl {
	return &PublisherImpl{
		Telegram: opts.Telegram,
		Logger:   opts.Logger.WithComponent("Publisher"),
	}
}

var _ publisher.Client = (*PublisherImpl)(nil)

func (p *PublisherImpl) Publish(ctx context.Context, channelLink, text, mediaURL string, isVideo bool) error {
	channel := NormalizeChannel(channelLink)
	if channel == "" {
		return errors.ErrInvalidInput
	}

	send := func() error {
		switch {
		case mediaURL == "":
			return p.Telegram.SendMessageToChannel(channel, text)
		case isVideo:
			return p.Telegram.SendVideoToChannel(channel, mediaURL, formatter.TruncateCaption(text, ""))
		default:
			return p.Telegram.SendPhotoToChannel(channel, mediaURL, formatter.TruncateCaption(text, ""))
		}
	}

	if err := retry.Do(ctx, p.Logger, "publish to "+channel, send, retry.DefaultConfig()); err != nil {
		return errors.Transient(err, "publish")
	}

	p.Logger.Info("Post published", "channel", channel, "has_media", mediaURL != "", "is_video", isVideo)
	return nil
}

// NormalizeChannel converts any supported channel link form to the
// @username form the Bot API expects.
func NormalizeChannel(link string) string {
	link = strings.TrimSpace(link)
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/"} {
		if strings.HasPrefix(link, prefix) {
			link = strings.TrimPrefix(link, prefix)
			break
		}
	}
	link = strings.Trim(link, "/")
	link = strings.TrimPrefix(link, "@")
	if link == "" {
		return ""
	}
	return "@" + link
}
