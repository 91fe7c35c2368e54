package schedulerimpl

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPacing(t *testing.T) Pacing {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return Pacing{
		Location:        loc,
		WindowStartHour: 6,
		WindowEndHour:   23,
		DailyQuota:      6,
		Jitter:          15 * time.Minute,
		FirstPostWindow: 40 * time.Minute,
	}
}

func windowBounds(p Pacing, day time.Time) (time.Time, time.Time) {
	local := day.In(p.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), p.WindowStartHour, 0, 0, 0, p.Location)
	return start, start.Add(time.Duration(p.WindowEndHour-p.WindowStartHour) * time.Hour)
}

func TestNextPostTimeFirstSlotOfDay(t *testing.T) {
	p := testPacing(t)
	rng := rand.New(rand.NewSource(1))

	early := time.Date(2026, 8, 28, 4, 30, 0, 0, p.Location)
	dayStart, _ := windowBounds(p, early)

	for i := 0; i < 100; i++ {
		next := p.NextPostTime(early, rng)
		assert.False(t, next.Before(dayStart))
		assert.True(t, next.Before(dayStart.Add(p.FirstPostWindow)))
	}
}

func TestNextPostTimeRollsToNextDay(t *testing.T) {
	p := testPacing(t)
	rng := rand.New(rand.NewSource(2))

	late := time.Date(2026, 8, 28, 23, 10, 0, 0, p.Location)
	next := p.NextPostTime(late, rng)

	nextDayStart, _ := windowBounds(p, late.AddDate(0, 0, 1))
	assert.False(t, next.Before(nextDayStart))
	assert.True(t, next.Before(nextDayStart.Add(p.FirstPostWindow)))
}

func TestNextPostTimeAlwaysInsideWindow(t *testing.T) {
	p := testPacing(t)
	rng := rand.New(rand.NewSource(3))

	slot := time.Date(2026, 8, 28, 7, 0, 0, 0, p.Location)
	for i := 0; i < 500; i++ {
		next := p.NextPostTime(slot, rng)
		require.True(t, next.After(slot), "slot must advance")

		dayStart, dayEnd := windowBounds(p, next)
		require.False(t, next.Before(dayStart), "slot %v before window open", next)
		require.True(t, next.Before(dayEnd), "slot %v after window close", next)
		slot = next
	}
}

func TestNextPostTimeMeanInterval(t *testing.T) {
	p := testPacing(t)
	// (17h - 40m) / 5 posts
	assert.Equal(t, (17*time.Hour-40*time.Minute)/5, p.meanInterval())

	p.DailyQuota = 1
	assert.Equal(t, 17*time.Hour, p.meanInterval())
}

func TestNextPostTimeQuotaRoughlyHolds(t *testing.T) {
	p := testPacing(t)
	rng := rand.New(rand.NewSource(4))

	slot := time.Date(2026, 8, 28, 5, 0, 0, 0, p.Location)
	perDay := map[string]int{}
	lastDay := ""
	for i := 0; i < 200; i++ {
		slot = p.NextPostTime(slot, rng)
		day := slot.In(p.Location).Format("2006-01-02")
		perDay[day]++
		lastDay = day
	}

	for day, count := range perDay {
		assert.LessOrEqual(t, count, p.DailyQuota, "day %s overshoots quota", day)
		if day != lastDay {
			assert.GreaterOrEqual(t, count, p.DailyQuota-1, "day %s undershoots quota", day)
		}
	}
}
