// Package expiry derives the effective status of a post from its stored status,
// its pickup deadline and the current time. Nothing here writes; the stored
// status may lag behind until a lifecycle operation persists a transition.
package expiry

import (
	"fmt"
	"time"

	"github.com/erazemk/foodrescue/internal/model"
)

// HHMM is the layout of the time-of-day deadline input and of the
// ready_until_hhmm column.
const HHMM = "15:04"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// Lapsed reports whether the deadline has passed. An absent deadline never lapses.
func Lapsed(readyUntil *time.Time, now time.Time) bool {
	return readyUntil != nil && readyUntil.Before(now)
}

// EffectiveStatus returns Expired for an open or claimed post whose deadline
// is before now, and the stored status otherwise.
func EffectiveStatus(p model.Post, now time.Time) model.Status {
	if p.ReadyUntil == nil {
		return p.Status
	}
	if (p.Status == model.StatusOpen || p.Status == model.StatusClaimed) && Lapsed(p.ReadyUntil, now) {
		return model.StatusExpired
	}
	return p.Status
}

// Apply returns a copy of posts with each status replaced by its effective status.
func Apply(posts []model.Post, now time.Time) []model.Post {
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		p.Status = EffectiveStatus(p, now)
		out[i] = p
	}
	return out
}

// ReadyUntil combines the calendar day of now (in loc) with an HH:MM time of
// day. The result is in loc.
func ReadyUntil(now time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	tod, err := time.Parse(HHMM, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: want HH:MM", hhmm)
	}
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, loc), nil
}
