package publisher

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=mocks/mock.go
type Client interface {
	// Publish delivers a finished post to the channel. Accepts channel
	// links in t.me, @username and bare-username forms.
	Publish(ctx context.Context, channelLink, text, mediaURL string, isVideo bool) error
}
