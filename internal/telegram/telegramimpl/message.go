package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendMessage sends a text message to a specific chat ID.
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sentMsg.MessageID, nil
}

// SendMessageWithMarkup sends a text message with an inline keyboard.
func (tg *TelegramImpl) SendMessageWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message with markup",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sentMsg.MessageID, nil
}

// EditMessageText replaces the text of an already sent message.
func (tg *TelegramImpl) EditMessageText(chatID int64, messageID int, newText string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, newText)
	if _, err := tg.TgBot.Send(edit); err != nil {
		tg.Logger.Error("Error editing message",
			"chatID", chatID,
			"messageID", messageID,
			"error", err)
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// SendMessageToChannel sends a text post to a channel by @username.
func (tg *TelegramImpl) SendMessageToChannel(channel string, text string) error {
	msg := tgbotapi.NewMessageToChannel(channel, text)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", channel,
			"error", err)
		return fmt.Errorf("failed to send message to channel: %w", err)
	}
	return nil
}

// SendPhotoToChannel sends a photo by URL with a caption. Telegram
// fetches the file itself, so no local download is needed.
func (tg *TelegramImpl) SendPhotoToChannel(channel string, fileURL string, caption string) error {
	photo := tgbotapi.NewPhotoToChannel(channel, tgbotapi.FileURL(fileURL))
	photo.Caption = caption
	if _, err := tg.TgBot.Send(photo); err != nil {
		tg.Logger.Error("Error sending photo to channel",
			"channel", channel,
			"error", err)
		return fmt.Errorf("failed to send photo to channel: %w", err)
	}
	return nil
}

// SendVideoToChannel sends a video by URL with a caption.
func (tg *TelegramImpl) SendVideoToChannel(channel string, fileURL string, caption string) error {
	video := tgbotapi.NewVideo(0, tgbotapi.FileURL(fileURL))
	video.ChannelUsername = channel
	video.Caption = caption
	if _, err := tg.TgBot.Send(video); err != nil {
		tg.Logger.Error("Error sending video to channel",
			"channel", channel,
			"error", err)
		return fmt.Errorf("failed to send video to channel: %w", err)
	}
	return nil
}
