package persona

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=persona.go -destination=mocks/mock.go
type Repository interface {
	// Get returns the owner's rewrite role text, inserting the default
	// role for owners seen for the first time.
	Get(ctx context.Context, ownerID int64) (string, error)

	// Set replaces the owner's role text.
	Set(ctx context.Context, ownerID int64, roleText string) error

	// Delete removes the override; the owner falls back to the default.
	Delete(ctx context.Context, ownerID int64) error
}
