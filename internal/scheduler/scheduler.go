package scheduler

import "context"

// Client drives the two cooperative loops of the engine: production
// (pick, dedup, rewrite, enqueue) and publishing (claim, send, record).
//
//go:generate go run go.uber.org/mock/mockgen -source=scheduler.go -destination=mocks/mock.go
type Client interface {
	// ScheduleProduction starts the jittered production loop.
	ScheduleProduction(ctx context.Context) error

	// SchedulePublishing starts the fixed-interval publish loop.
	SchedulePublishing(ctx context.Context) error

	// ScheduleCleanup starts the nightly source-pool cleanup job.
	ScheduleCleanup(ctx context.Context) error

	// RunProductionCycle executes one production pass over all active
	// channels. Called by the loop and directly by owner commands.
	RunProductionCycle(ctx context.Context)

	// RunPublishCycle executes one publish pass over due items.
	RunPublishCycle(ctx context.Context)
}
