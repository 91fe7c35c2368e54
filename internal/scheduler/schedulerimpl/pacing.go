package schedulerimpl

import (
	"math/rand"
	"time"
)

// Pacing computes publication slots inside a daily posting window. With
// quota N, the day is paced at roughly (window - firstPostWindow)/(N-1)
// between posts, each slot shifted by a uniform jitter. Slots never
// land outside the window; an overflow rolls to the next day's opening
// stretch.
type Pacing struct {
	Location        *time.Location
	WindowStartHour int
	WindowEndHour   int
	DailyQuota      int
	Jitter          time.Duration
	FirstPostWindow time.Duration
}

// NextPostTime returns the slot that follows prev. prev is the slot
// being consumed right now, or any time before the window for the
// first post of the day.
func (p Pacing) NextPostTime(prev time.Time, rng *rand.Rand) time.Time {
	local := prev.In(p.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), p.WindowStartHour, 0, 0, 0, p.Location)
	dayEnd := time.Date(local.Year(), local.Month(), local.Day(), p.WindowEndHour, 0, 0, 0, p.Location)

	if local.Before(dayStart) {
		return p.firstSlot(dayStart, rng)
	}
	if !local.Before(dayEnd) {
		return p.firstSlot(dayStart.AddDate(0, 0, 1), rng)
	}

	next := local.Add(p.meanInterval() + p.jitter(rng))
	// Jitter may not move a slot backwards past the one being consumed.
	if !next.After(local) {
		next = local.Add(time.Minute)
	}
	if !next.Before(dayEnd) {
		return p.firstSlot(dayStart.AddDate(0, 0, 1), rng)
	}
	return next
}

func (p Pacing) meanInterval() time.Duration {
	window := time.Duration(p.WindowEndHour-p.WindowStartHour) * time.Hour
	if p.DailyQuota < 2 {
		return window
	}
	return (window - p.FirstPostWindow) / time.Duration(p.DailyQuota-1)
}

func (p Pacing) jitter(rng *rand.Rand) time.Duration {
	if p.Jitter <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(2*p.Jitter))) - p.Jitter
}

// firstSlot spreads the opening post uniformly over the first stretch
// of the window so channels do not all fire at the same minute.
func (p Pacing) firstSlot(dayStart time.Time, rng *rand.Rand) time.Time {
	if p.FirstPostWindow <= 0 {
		return dayStart
	}
	return dayStart.Add(time.Duration(rng.Int63n(int64(p.FirstPostWindow))))
}
