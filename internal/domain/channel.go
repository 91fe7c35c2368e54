package domain

import "time"

// ChannelAutopostConfig holds the per (owner, channel) autopost
// settings. NextPostTime gates the production loop: a channel is only
// processed once it has elapsed, and it is advanced after every cycle
// whether or not a post was produced.
type ChannelAutopostConfig struct {
	ID                int64
	OwnerID           int64
	ChannelLink       string
	Mode              Mode
	Active            bool
	SourceSelection   SourceSelection
	SelectedSourceIDs []int64
	Topics            []string
	PersonaRole       string
	BlockedTopics     []string
	CandidateLimit    int
	NextPostTime      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
