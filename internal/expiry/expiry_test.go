package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/foodrescue/internal/model"
)

var (
	ist = time.FixedZone("IST", 5*3600+1800)
	now = time.Date(2026, 3, 14, 18, 30, 0, 0, ist)
)

func at(t time.Time) *time.Time { return &t }

func TestEffectiveStatus(t *testing.T) {
	past := at(now.Add(-time.Minute))
	future := at(now.Add(time.Minute))

	tests := []struct {
		name       string
		status     model.Status
		readyUntil *time.Time
		want       model.Status
	}{
		{"open without deadline", model.StatusOpen, nil, model.StatusOpen},
		{"claimed without deadline", model.StatusClaimed, nil, model.StatusClaimed},
		{"open before deadline", model.StatusOpen, future, model.StatusOpen},
		{"open after deadline", model.StatusOpen, past, model.StatusExpired},
		{"claimed after deadline", model.StatusClaimed, past, model.StatusExpired},
		{"completed after deadline", model.StatusCompleted, past, model.StatusCompleted},
		{"expired before deadline", model.StatusExpired, future, model.StatusExpired},
		{"deadline equal to now", model.StatusOpen, at(now), model.StatusOpen},
		{"unknown status after deadline", model.Status("archived"), past, model.Status("archived")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.Post{Status: tt.status, ReadyUntil: tt.readyUntil}
			assert.Equal(t, tt.want, EffectiveStatus(p, now))
		})
	}
}

func TestEffectiveStatusIdempotent(t *testing.T) {
	for _, status := range model.Statuses {
		for _, ru := range []*time.Time{nil, at(now.Add(-time.Hour)), at(now.Add(time.Hour))} {
			p := model.Post{Status: status, ReadyUntil: ru}
			once := EffectiveStatus(p, now)
			p.Status = once
			assert.Equal(t, once, EffectiveStatus(p, now), "status=%s readyUntil=%v", status, ru)
		}
	}
}

func TestEffectiveStatusAcrossZones(t *testing.T) {
	// 13:00 UTC is 18:30 IST; one nanosecond earlier has lapsed.
	deadline := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	p := model.Post{Status: model.StatusOpen, ReadyUntil: &deadline}
	assert.Equal(t, model.StatusExpired, EffectiveStatus(p, now))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	posts := []model.Post{
		{ID: "a", Status: model.StatusOpen, ReadyUntil: at(now.Add(-time.Hour))},
		{ID: "b", Status: model.StatusOpen},
	}

	view := Apply(posts, now)
	require.Len(t, view, 2)
	assert.Equal(t, model.StatusExpired, view[0].Status)
	assert.Equal(t, model.StatusOpen, view[1].Status)
	assert.Equal(t, model.StatusOpen, posts[0].Status, "stored status must be left alone")
}

func TestReadyUntil(t *testing.T) {
	got, err := ReadyUntil(now, "21:00", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 21, 0, 0, 0, ist), got)

	// The calendar day comes from the configured zone, not from now's zone.
	lateUTC := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) // 01:30 on the 15th in IST
	got, err = ReadyUntil(lateUTC, "00:01", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 1, 0, 0, ist), got)

	for _, bad := range []string{"", "9pm", "25:00", "21:60", "21:00:00"} {
		_, err := ReadyUntil(now, bad, ist)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLapsed(t *testing.T) {
	assert.False(t, Lapsed(nil, now))
	assert.True(t, Lapsed(at(now.Add(-time.Second)), now))
	assert.False(t, Lapsed(at(now), now))
}
