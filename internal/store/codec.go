package store

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/foodrescue/internal/expiry"
	"github.com/erazemk/foodrescue/internal/model"
)

// timeLayouts are tried in order when reading a timestamp column. Layouts
// without a zone are interpreted in the store's location.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime returns nil for empty, null-like or unparseable input.
func parseTime(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nat", "nan", "none", "null":
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			t = t.In(loc)
			return &t
		}
	}
	return nil
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339Nano)
}

// parseQty coerces anything unparseable to 0.
func parseQty(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// encodePost renders a post as one row of column values, in db.PostColumns order.
func encodePost(p model.Post, loc *time.Location) []any {
	hhmm := p.ReadyUntilHHMM
	if p.ReadyUntil != nil {
		hhmm = p.ReadyUntil.In(loc).Format(expiry.HHMM)
	}
	return []any{
		p.ID,
		formatTime(&p.CreatedAt, loc),
		p.DonorName,
		p.DonorPhone,
		p.FoodDesc,
		strconv.Itoa(p.QtyMeals),
		string(p.VegType),
		p.Allergens,
		p.Address,
		formatTime(p.ReadyUntil, loc),
		hhmm,
		string(p.Status),
		p.ClaimerName,
		p.ClaimerPhone,
		p.DonorCode,
		p.VolunteerCode,
		formatTime(p.CompletedAt, loc),
	}
}

// decodePost builds a post from raw column values in db.PostColumns order.
// It never fails: bad numbers become 0 and bad timestamps become absent.
func decodePost(cols []string, loc *time.Location) model.Post {
	get := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}

	p := model.Post{
		ID:             get(0),
		DonorName:      get(2),
		DonorPhone:     get(3),
		FoodDesc:       get(4),
		QtyMeals:       parseQty(get(5)),
		Allergens:      get(7),
		Address:        get(8),
		ReadyUntil:     parseTime(get(9), loc),
		ReadyUntilHHMM: get(10),
		Status:         model.ParseStatus(get(11)),
		ClaimerName:    get(12),
		ClaimerPhone:   get(13),
		DonorCode:      get(14),
		VolunteerCode:  get(15),
		CompletedAt:    parseTime(get(16), loc),
	}
	if created := parseTime(get(1), loc); created != nil {
		p.CreatedAt = *created
	}
	if vt, err := model.ParseVegType(get(6)); err == nil {
		p.VegType = vt
	} else {
		p.VegType = model.VegType(get(6))
	}
	return p
}

func clonePosts(posts []model.Post) []model.Post {
	if posts == nil {
		return nil
	}
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		if p.ReadyUntil != nil {
			t := *p.ReadyUntil
			p.ReadyUntil = &t
		}
		if p.CompletedAt != nil {
			t := *p.CompletedAt
			p.CompletedAt = &t
		}
		out[i] = p
	}
	return out
}
