package domain

import "time"

// SourcePost is one harvested unit of content. The fetch pipeline
// creates these; the engine only ever flips the Used flag.
type SourcePost struct {
	ID          int64
	OwnerID     int64
	SourceID    int64
	SourceLink  string
	PostLink    string
	Text        string
	Topics      []string
	Likes       int
	Views       int
	Comments    int
	MediaURL    string
	IsVideo     bool
	Used        bool
	PublishedAt time.Time
	CreatedAt   time.Time
}

// Engagement is the ordering key used by candidate selection.
func (p *SourcePost) Engagement() int {
	return p.Likes + p.Comments
}
