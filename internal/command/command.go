package command

import "context"

// Client runs the long-polling owner command loop.
//
//go:generate go run go.uber.org/mock/mockgen -source=command.go -destination=mocks/mock.go
type Client interface {
	HandleCommand(ctx context.Context) error
}
