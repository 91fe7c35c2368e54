package notifierimpl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/notifier"
	"github.com/curatorbot/autopost-engine/internal/telegram"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/curatorbot/autopost-engine/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram telegram.Client
	Logger   logger.Logger
}

type NotifierImpl struct {
	Telegram telegram.Client
	Logger   logger.Logger
}

func New(opts Opts) *NotifierImpl {
	return &NotifierImpl{
		Telegram: opts.Telegram,
		Logger:   opts.Logger.WithComponent("Notifier"),
	}
}

var _ notifier.Client = (*NotifierImpl)(nil)

const previewLimit = 500

// SendForApproval sends the draft to the owner. The "Post #<id>" line is
// load-bearing: the command handler parses it out of reply messages to
// route text edits to the right item.
func (n *NotifierImpl) SendForApproval(ctx context.Context, item *domain.QueueItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Post #%d for %s\n", item.ID, item.ChannelLink)
	fmt.Fprintf(&b, "Scheduled: %s\n\n", item.ScheduledTime.Format("15:04 02.01.2006"))
	b.WriteString(preview(item.Text))
	b.WriteString("\n\nReply to this message to edit the text.")

	id := strconv.FormatInt(item.ID, 10)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", notifier.CallbackApprove+id),
			tgbotapi.NewInlineKeyboardButtonData("Reject", notifier.CallbackReject+id),
		),
	)

	send := func() error {
		_, err := n.Telegram.SendMessageWithMarkup(item.OwnerID, b.String(), markup)
		return err
	}
	if err := retry.Do(ctx, n.Logger, "send approval request", send, retry.DefaultConfig()); err != nil {
		return errors.Transient(err, "send approval request")
	}

	n.Logger.Info("Approval request sent", "id", item.ID, "owner", item.OwnerID)
	return nil
}

func (n *NotifierImpl) NotifyPublishResult(ctx context.Context, item *domain.QueueItem, success bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("Post #%d published to %s", item.ID, item.ChannelLink)
	if !success {
		text = fmt.Sprintf("Post #%d failed to publish to %s", item.ID, item.ChannelLink)
	}

	send := func() error {
		_, err := n.Telegram.SendMessage(item.OwnerID, text)
		return err
	}
	if err := retry.Do(ctx, n.Logger, "notify publish result", send, retry.DefaultConfig()); err != nil {
		return errors.Transient(err, "notify publish result")
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit-3]) + "..."
}
