package publisherimpl

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/curatorbot/autopost-engine/pkg/errors"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	messages []string
	photos   []string
	videos   []string
	channel  string
	caption  string
	err      error
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return nil }
func (f *fakeTelegram) StopReceivingUpdates()                                        {}
func (f *fakeTelegram) Request(tgbotapi.Chattable) error                             { return nil }
func (f *fakeTelegram) SendMessage(int64, string) (int, error)                       { return 0, nil }
func (f *fakeTelegram) SendMessageWithMarkup(int64, string, tgbotapi.InlineKeyboardMarkup) (int, error) {
	return 0, nil
}
func (f *fakeTelegram) EditMessageText(int64, int, string) error { return nil }

func (f *fakeTelegram) SendMessageToChannel(channel string, text string) error {
	f.channel = channel
	f.messages = append(f.messages, text)
	return f.err
}

func (f *fakeTelegram) SendPhotoToChannel(channel string, fileURL string, caption string) error {
	f.channel = channel
	f.caption = caption
	f.photos = append(f.photos, fileURL)
	return f.err
}

func (f *fakeTelegram) SendVideoToChannel(channel string, fileURL string, caption string) error {
	f.channel = channel
	f.caption = caption
	f.videos = append(f.videos, fileURL)
	return f.err
}

func newPublisher(tg *fakeTelegram) *PublisherImpl {
	return New(Opts{Telegram: tg, Logger: logger.NewNop()})
}

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"https://t.me/mychannel": "@mychannel",
		"http://t.me/mychannel":  "@mychannel",
		"t.me/mychannel":         "@mychannel",
		"t.me/mychannel/":        "@mychannel",
		"@mychannel":             "@mychannel",
		"mychannel":              "@mychannel",
		"  t.me/mychannel  ":     "@mychannel",
		"":                       "",
		"   ":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeChannel(in), "input %q", in)
	}
}

func TestPublishText(t *testing.T) {
	tg := &fakeTelegram{}
	p := newPublisher(tg)

	err := p.Publish(context.Background(), "https://t.me/mychannel", "hello", "", false)
	require.NoError(t, err)
	assert.Equal(t, "@mychannel", tg.channel)
	assert.Equal(t, []string{"hello"}, tg.messages)
	assert.Empty(t, tg.photos)
}

func TestPublishPhotoAndVideo(t *testing.T) {
	tg := &fakeTelegram{}
	p := newPublisher(tg)

	require.NoError(t, p.Publish(context.Background(), "@mychannel", "caption", "https://cdn/img.jpg", false))
	assert.Equal(t, []string{"https://cdn/img.jpg"}, tg.photos)
	assert.Equal(t, "caption", tg.caption)

	require.NoError(t, p.Publish(context.Background(), "@mychannel", "caption", "https://cdn/clip.mp4", true))
	assert.Equal(t, []string{"https://cdn/clip.mp4"}, tg.videos)
}

func TestPublishRejectsEmptyChannel(t *testing.T) {
	p := newPublisher(&fakeTelegram{})
	err := p.Publish(context.Background(), "   ", "hello", "", false)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestPublishTransportFailureIsTransient(t *testing.T) {
	tg := &fakeTelegram{err: assert.AnError}
	p := newPublisher(tg)

	err := p.Publish(context.Background(), "@mychannel", "hello", "", false)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
