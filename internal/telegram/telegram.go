package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) error

	SendMessage(chatID int64, text string) (int, error)
	SendMessageWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error)
	EditMessageText(chatID int64, messageID int, newText string) error

	SendMessageToChannel(channel string, text string) error
	SendPhotoToChannel(channel string, fileURL string, caption string) error
	SendVideoToChannel(channel string, fileURL string, caption string) error
}
