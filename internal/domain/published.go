package domain

import "time"

// PublishedRecord is an append-only log entry written exactly once per
// successful publish. The duplicate filter reads today's records back
// as the "already seen" comparison set.
type PublishedRecord struct {
	ID          int64
	ChannelLink string
	SourceLink  string
	Text        string
	PublishedAt time.Time
}

// Persona is the rewrite role text configured by an owner.
type Persona struct {
	OwnerID   int64
	RoleText  string
	CreatedAt time.Time
}

// DefaultPersonaRole is assigned to owners who never configured one.
const DefaultPersonaRole = "You are a journalist and editor."
