package rewriter

import "context"

// Request carries everything the rewrite stage needs for one post.
type Request struct {
	OwnerID       int64
	Text          string
	PersonaRole   string
	BlockedTopics []string
}

// Result is the outcome of screening plus rewriting. When Blocked is
// set, Text is empty and the source post must be marked used without
// entering the queue.
type Result struct {
	Text          string
	Blocked       bool
	BlockedReason string
}

//go:generate go run go.uber.org/mock/mockgen -source=rewriter.go -destination=mocks/mock.go
type Client interface {
	// Rewrite screens the text against the blocked topics and, if it
	// passes, rewrites it in the persona's voice. Model failures degrade
	// to the original text rather than losing the post.
	Rewrite(ctx context.Context, req Request) (*Result, error)
}
