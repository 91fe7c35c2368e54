package domain

import "time"

// QueueItem is one in-flight or completed autopost. Items are never
// physically deleted, only transitioned to a terminal status.
type QueueItem struct {
	ID            int64
	OwnerID       int64
	ChannelLink   string
	Text          string
	MediaURL      string
	IsVideo       bool
	Status        Status
	ScheduledTime time.Time
	Mode          Mode
	SourcePostID  int64
	SourceLink    string
	CreatedAt     time.Time
}
