package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/curatorbot/autopost-engine/internal/command"
	"github.com/curatorbot/autopost-engine/internal/queue"
	"github.com/curatorbot/autopost-engine/internal/ratelimit"
	"github.com/curatorbot/autopost-engine/internal/repositories/channel"
	"github.com/curatorbot/autopost-engine/internal/repositories/persona"
	"github.com/curatorbot/autopost-engine/internal/scheduler"
	"github.com/curatorbot/autopost-engine/internal/telegram"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram    telegram.Client
	Queue       queue.Service
	Scheduler   scheduler.Client
	ChannelRepo channel.Repository
	PersonaRepo persona.Repository
	Clock       clockwork.Clock
	Logger      logger.Logger
	Config      *config.Config
}

type CommandImpl struct {
	Telegram    telegram.Client
	Queue       queue.Service
	Scheduler   scheduler.Client
	ChannelRepo channel.Repository
	PersonaRepo persona.Repository
	Clock       clockwork.Clock
	Logger      logger.Logger
	Config      *config.Config
	Limiter     ratelimit.Limiter
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram:    opts.Telegram,
		Queue:       opts.Queue,
		Scheduler:   opts.Scheduler,
		ChannelRepo: opts.ChannelRepo,
		PersonaRepo: opts.PersonaRepo,
		Clock:       opts.Clock,
		Logger:      opts.Logger.WithComponent("CommandHandler"),
		Config:      opts.Config,
		Limiter:     ratelimit.NewInMemoryLimiter(1, 3*time.Second, 3),
	}
}

var _ command.Client = (*CommandImpl)(nil)

const helpMessage = `*Autopost engine commands:*

/channels - List your channels and their settings.
/pending - Show in-flight queue items.
/postnow - Publish to all your channels as soon as possible.
/pause <channel> - Pause autoposting for a channel.
/resume <channel> - Resume autoposting for a channel.
/mode <channel> <automatic|controlled> - Switch handling mode.
/persona [text] - Show or set the rewrite persona.
/history <channel> - Show the last day of queue activity.

When a post is waiting for approval, use the buttons under the
approval message, or reply to it with new text to edit the post.

Type /help at any time to see this guide.`

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}

			if update.CallbackQuery != nil {
				go c.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				if u.Message == nil {
					return
				}

				chatID := u.Message.Chat.ID
				if !c.Limiter.Allow(chatID) {
					c.Telegram.SendMessage(chatID, "Too many commands, please slow down.")
					return
				}

				if u.Message.ReplyToMessage != nil {
					c.handleReplyEdit(ctx, u.Message)
					return
				}

				if u.Message.IsCommand() {
					if err := c.processCommand(ctx, u); err != nil {
						c.Logger.Error("Error processing command",
							"command", u.Message.Command(),
							"error", err)
					}
				}
			}(update)
		}
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update) error {
	cmd := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	switch cmd {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "channels":
		c.handleChannels(ctx, chatID)
		return nil
	case "pending":
		c.handlePending(ctx, chatID)
		return nil
	case "postnow":
		c.handlePostNow(ctx, chatID)
		return nil
	case "pause":
		c.handleSetActive(ctx, chatID, args, false)
		return nil
	case "resume":
		c.handleSetActive(ctx, chatID, args, true)
		return nil
	case "mode":
		c.handleMode(ctx, chatID, args)
		return nil
	case "persona":
		c.handlePersona(ctx, chatID, args)
		return nil
	case "history":
		c.handleHistory(ctx, chatID, args)
		return nil
	default:
		_, err := c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return err
	}
}
