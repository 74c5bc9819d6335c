package compose

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opengreens/verdant/internal/cluster"
)

const eventDuration = 3 * time.Hour

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for scheduling. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Schedule returns the start and end time for a new event: 10:00 on the next
// Saturday, three hours long. Runs on a Saturday schedule for the Saturday
// after, never same-day.
func Schedule() (start, end time.Time) {
	now := clock.Now()

	daysUntilSaturday := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if daysUntilSaturday == 0 {
		daysUntilSaturday = 7
	}

	start = time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location()).
		AddDate(0, 0, daysUntilSaturday)
	return start, start.Add(eventDuration)
}

// MaxParticipants returns the participant cap for a category. Cleanups scale
// to more hands than meetings or workshops do.
func MaxParticipants(category cluster.Category) int {
	if category == cluster.Cleanup {
		return 30
	}
	return 25
}
