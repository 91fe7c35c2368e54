package selectorimpl

import (
	"testing"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(id int64, sourceID int64, text string, likes, comments int, topics ...string) *domain.SourcePost {
	return &domain.SourcePost{
		ID:          id,
		OwnerID:     1,
		SourceID:    sourceID,
		PostLink:    "https://t.me/src/1",
		Text:        text,
		Topics:      topics,
		Likes:       likes,
		Comments:    comments,
		PublishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func longText() string {
	s := ""
	for i := 0; i < 20; i++ {
		s += "markets news "
	}
	return s
}

func TestPickEligibility(t *testing.T) {
	cfg := &domain.ChannelAutopostConfig{OwnerID: 1, SourceSelection: domain.SelectionAuto}

	used := post(1, 10, longText(), 100, 0)
	used.Used = true
	noLink := post(2, 10, longText(), 90, 0)
	noLink.PostLink = ""
	short := post(3, 10, "too short", 80, 0)
	good := post(4, 10, longText(), 70, 0)

	got := Pick(cfg, []*domain.SourcePost{used, noLink, short, good}, 10, 80)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ID)
}

func TestPickManualSelection(t *testing.T) {
	cfg := &domain.ChannelAutopostConfig{
		OwnerID:           1,
		SourceSelection:   domain.SelectionManual,
		SelectedSourceIDs: []int64{20},
	}

	a := post(1, 10, longText(), 100, 0)
	b := post(2, 20, longText(), 50, 0)

	got := Pick(cfg, []*domain.SourcePost{a, b}, 10, 80)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestPickTopicMatchAndFallback(t *testing.T) {
	cfg := &domain.ChannelAutopostConfig{
		OwnerID:         1,
		SourceSelection: domain.SelectionAuto,
		Topics:          []string{"tech"},
	}

	tech := post(1, 10, longText(), 10, 0, "tech", "ai")
	sport := post(2, 10, longText(), 100, 0, "sport")

	t.Run("topics intersect", func(t *testing.T) {
		got := Pick(cfg, []*domain.SourcePost{tech, sport}, 10, 80)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("no match degrades to full pool", func(t *testing.T) {
		cfg := &domain.ChannelAutopostConfig{
			OwnerID:         1,
			SourceSelection: domain.SelectionAuto,
			Topics:          []string{"finance"},
		}
		got := Pick(cfg, []*domain.SourcePost{tech, sport}, 10, 80)
		require.Len(t, got, 2)
	})
}

func TestPickOrderingAndLimit(t *testing.T) {
	cfg := &domain.ChannelAutopostConfig{OwnerID: 1, SourceSelection: domain.SelectionAuto}

	low := post(1, 10, longText(), 5, 1)
	high := post(2, 10, longText(), 50, 10)
	mid := post(3, 10, longText(), 30, 0)
	older := post(4, 10, longText(), 30, 0)
	older.PublishedAt = older.PublishedAt.Add(-time.Hour)

	got := Pick(cfg, []*domain.SourcePost{low, older, high, mid}, 3, 80)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	// Equal engagement breaks ties by recency.
	assert.Equal(t, int64(4), got[2].ID)
}
