package commandimpl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/notifier"
)

func (c *CommandImpl) handleChannels(ctx context.Context, chatID int64) {
	configs, err := c.ChannelRepo.ListByOwner(ctx, chatID)
	if err != nil {
		c.Logger.Error("Failed to list channels", "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if len(configs) == 0 {
		c.Telegram.SendMessage(chatID, "You have no channels configured yet.")
		return
	}

	var b strings.Builder
	b.WriteString("Your channels:\n")
	for i, cfg := range configs {
		state := "active"
		if !cfg.Active {
			state = "paused"
		}
		fmt.Fprintf(&b, "%d. %s - %s, %s, next post %s\n",
			i+1, cfg.ChannelLink, cfg.Mode, state,
			cfg.NextPostTime.Format("15:04 02.01"))
	}
	c.Telegram.SendMessage(chatID, b.String())
}

func (c *CommandImpl) handlePending(ctx context.Context, chatID int64) {
	items, err := c.Queue.GetPending(ctx, chatID)
	if err != nil {
		c.Logger.Error("Failed to list pending items", "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if len(items) == 0 {
		c.Telegram.SendMessage(chatID, "No posts are in flight right now.")
		return
	}

	var b strings.Builder
	b.WriteString("In-flight posts:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "Post #%d - %s, %s, scheduled %s\n",
			item.ID, item.ChannelLink, item.Status,
			item.ScheduledTime.Format("15:04 02.01"))
	}
	c.Telegram.SendMessage(chatID, b.String())
}

// handlePostNow resets the owner's posting slots to now and kicks one
// production pass immediately instead of waiting for the next tick.
func (c *CommandImpl) handlePostNow(ctx context.Context, chatID int64) {
	touched, err := c.ChannelRepo.ResetNextPostTime(ctx, chatID, c.Clock.Now())
	if err != nil {
		c.Logger.Error("Failed to reset post times", "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if touched == 0 {
		c.Telegram.SendMessage(chatID, "You have no active channels.")
		return
	}

	c.Telegram.SendMessage(chatID, fmt.Sprintf("Scheduling posts for %d channel(s) now...", touched))
	go c.Scheduler.RunProductionCycle(ctx)
}

func (c *CommandImpl) handleSetActive(ctx context.Context, chatID int64, args string, active bool) {
	channelLink := strings.TrimSpace(args)
	if channelLink == "" {
		verb := "/pause"
		if active {
			verb = "/resume"
		}
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Please provide a channel: %s <channel>", verb))
		return
	}

	if err := c.ChannelRepo.SetActive(ctx, chatID, channelLink, active); err != nil {
		c.Logger.Error("Failed to switch channel state", "channel", channelLink, "error", err)
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Could not find channel %s.", channelLink))
		return
	}

	if active {
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Autoposting resumed for %s.", channelLink))
	} else {
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Autoposting paused for %s.", channelLink))
	}
}

func (c *CommandImpl) handleMode(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.Telegram.SendMessage(chatID, "Usage: /mode <channel> <automatic|controlled>")
		return
	}

	mode := domain.Mode(fields[1])
	if mode != domain.ModeAutomatic && mode != domain.ModeControlled {
		c.Telegram.SendMessage(chatID, "Mode must be automatic or controlled.")
		return
	}

	if err := c.ChannelRepo.SetMode(ctx, chatID, fields[0], mode); err != nil {
		c.Logger.Error("Failed to switch channel mode", "channel", fields[0], "error", err)
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Could not find channel %s.", fields[0]))
		return
	}
	c.Telegram.SendMessage(chatID, fmt.Sprintf("Channel %s switched to %s mode.", fields[0], mode))
}

func (c *CommandImpl) handlePersona(ctx context.Context, chatID int64, args string) {
	text := strings.TrimSpace(args)
	if text == "" {
		role, err := c.PersonaRepo.Get(ctx, chatID)
		if err != nil {
			c.Logger.Error("Failed to load persona", "error", err)
			c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
			return
		}
		c.Telegram.SendMessage(chatID, "Current persona:\n"+role+"\n\nSend /persona <text> to change it.")
		return
	}

	if err := c.PersonaRepo.Set(ctx, chatID, text); err != nil {
		c.Logger.Error("Failed to set persona", "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	c.Telegram.SendMessage(chatID, "Persona updated.")
}

func (c *CommandImpl) handleHistory(ctx context.Context, chatID int64, args string) {
	channelLink := strings.TrimSpace(args)
	if channelLink == "" {
		c.Telegram.SendMessage(chatID, "Please provide a channel: /history <channel>")
		return
	}

	items, err := c.Queue.GetHistory(ctx, channelLink, c.Clock.Now().Add(-24*time.Hour))
	if err != nil {
		c.Logger.Error("Failed to load history", "channel", channelLink, "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if len(items) == 0 {
		c.Telegram.SendMessage(chatID, fmt.Sprintf("No queue activity for %s in the last day.", channelLink))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last day for %s:\n", channelLink)
	for _, item := range items {
		if item.OwnerID != chatID {
			continue
		}
		fmt.Fprintf(&b, "Post #%d - %s at %s\n", item.ID, item.Status, item.CreatedAt.Format("15:04 02.01"))
	}
	c.Telegram.SendMessage(chatID, b.String())
}

// handleCallback reacts to the approve/reject buttons under approval
// messages.
func (c *CommandImpl) handleCallback(ctx context.Context, callbackQuery *tgbotapi.CallbackQuery) {
	callback := tgbotapi.NewCallback(callbackQuery.ID, "")
	// Request instead of Send: callback answers are not messages.
	_ = c.Telegram.Request(callback)

	data := callbackQuery.Data
	var approve bool
	var rawID string
	switch {
	case strings.HasPrefix(data, notifier.CallbackApprove):
		approve = true
		rawID = strings.TrimPrefix(data, notifier.CallbackApprove)
	case strings.HasPrefix(data, notifier.CallbackReject):
		rawID = strings.TrimPrefix(data, notifier.CallbackReject)
	default:
		c.Logger.Warn("Unknown callback data", "data", data)
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		c.Logger.Warn("Malformed callback data", "data", data)
		return
	}

	chatID := callbackQuery.Message.Chat.ID
	item, err := c.Queue.GetByID(ctx, id)
	if err != nil {
		c.Logger.Error("Failed to load item for callback", "id", id, "error", err)
		return
	}
	if item.OwnerID != callbackQuery.From.ID {
		c.Logger.Warn("Callback from non-owner ignored", "id", id, "from", callbackQuery.From.ID)
		return
	}

	var ok bool
	if approve {
		ok, err = c.Queue.Approve(ctx, item.OwnerID, item.ChannelLink)
	} else {
		ok, err = c.Queue.Reject(ctx, item.OwnerID, item.ChannelLink)
	}
	if err != nil {
		c.Logger.Error("Failed to apply approval decision", "id", id, "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}

	messageID := callbackQuery.Message.MessageID
	switch {
	case !ok:
		c.Telegram.EditMessageText(chatID, messageID,
			fmt.Sprintf("Post #%d was already handled.", id))
	case approve:
		c.Telegram.EditMessageText(chatID, messageID,
			fmt.Sprintf("Post #%d approved. It will be published shortly.", id))
	default:
		c.Telegram.EditMessageText(chatID, messageID,
			fmt.Sprintf("Post #%d rejected.", id))
	}
}

var postIDPattern = regexp.MustCompile(`Post #(\d+)`)

// handleReplyEdit routes a reply to an approval message into a text
// edit of the still-awaiting item.
func (c *CommandImpl) handleReplyEdit(ctx context.Context, msg *tgbotapi.Message) {
	match := postIDPattern.FindStringSubmatch(msg.ReplyToMessage.Text)
	if match == nil {
		return
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return
	}

	chatID := msg.Chat.ID
	newText := strings.TrimSpace(msg.Text)
	if newText == "" {
		c.Telegram.SendMessage(chatID, "The replacement text cannot be empty.")
		return
	}

	item, err := c.Queue.GetByID(ctx, id)
	if err != nil {
		c.Logger.Error("Failed to load item for edit", "id", id, "error", err)
		return
	}
	if item.OwnerID != chatID {
		return
	}

	ok, err := c.Queue.EditText(ctx, item.OwnerID, item.ChannelLink, newText)
	if err != nil {
		c.Logger.Error("Failed to edit item text", "id", id, "error", err)
		c.Telegram.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if !ok {
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Post #%d is no longer editable.", id))
		return
	}
	c.Telegram.SendMessage(chatID, fmt.Sprintf("Post #%d updated. Approve it when ready.", id))
}
