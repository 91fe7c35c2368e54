package domain

// Status is the lifecycle state of a QueueItem. Transitions are
// monotonic: an item never returns to StatusPending, and terminal
// states are never overwritten.
type Status string

const (
	StatusPending         Status = "pending"
	StatusSentForApproval Status = "sent_for_approval"
	StatusApproved        Status = "approved"
	StatusPublishing      Status = "publishing"
	StatusPublished       Status = "published"
	StatusCancelled       Status = "cancelled"
	StatusFailed          Status = "failed"
	StatusExpired         Status = "expired"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusPublished, StatusCancelled, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// NonTerminalStatuses lists every status an in-flight item can hold.
func NonTerminalStatuses() []Status {
	return []Status{StatusPending, StatusSentForApproval, StatusApproved, StatusPublishing}
}

// Mode selects how a channel handles a freshly produced post.
type Mode string

const (
	// ModeAutomatic publishes without human review.
	ModeAutomatic Mode = "automatic"
	// ModeControlled routes the post to the owner for approval first.
	ModeControlled Mode = "controlled"
)

// SourceSelection decides which sources feed a channel's candidate pool.
type SourceSelection string

const (
	// SelectionAuto admits sources whose topics intersect the channel's.
	SelectionAuto SourceSelection = "auto"
	// SelectionManual admits only an explicit list of source ids.
	SelectionManual SourceSelection = "manual"
)
