// Package report derives the impact dashboard from the current posts.
package report

import (
	"sort"

	"github.com/erazemk/foodrescue/internal/model"
)

// DefaultTopN is the length of the donor and volunteer leaderboards.
const DefaultTopN = 5

// Dashboard is the aggregate view of all posts.
type Dashboard struct {
	Total          int                  `json:"total"`
	CompletedMeals int                  `json:"completed_meals"`
	Open           int                  `json:"open"`
	Claimed        int                  `json:"claimed"`
	Completed      int                  `json:"completed"`
	Expired        int                  `json:"expired"`
	MealsByStatus  map[model.Status]int `json:"per_status_meal_totals"`
	TopDonors      []Contributor        `json:"top_donors"`
	TopVolunteers  []Contributor        `json:"top_volunteers"`
}

// Contributor is one leaderboard row.
type Contributor struct {
	Name  string `json:"name"`
	Meals int    `json:"meals"`
}

// Summarize folds posts into a Dashboard. Posts are expected to already carry
// their effective status. Donors are ranked by meals posted in any status,
// volunteers by meals in completed handovers. A topN below one selects
// DefaultTopN.
func Summarize(posts []model.Post, topN int) Dashboard {
	if topN < 1 {
		topN = DefaultTopN
	}

	d := Dashboard{
		Total:         len(posts),
		MealsByStatus: make(map[model.Status]int, len(model.Statuses)),
	}
	for _, s := range model.Statuses {
		d.MealsByStatus[s] = 0
	}

	donors := map[string]int{}
	volunteers := map[string]int{}

	for _, p := range posts {
		d.MealsByStatus[p.Status] += p.QtyMeals
		donors[p.DonorName] += p.QtyMeals

		switch p.Status {
		case model.StatusOpen:
			d.Open++
		case model.StatusClaimed:
			d.Claimed++
		case model.StatusCompleted:
			d.Completed++
			d.CompletedMeals += p.QtyMeals
			volunteers[p.ClaimerName] += p.QtyMeals
		case model.StatusExpired:
			d.Expired++
		}
	}

	d.TopDonors = leaderboard(donors, topN)
	d.TopVolunteers = leaderboard(volunteers, topN)
	return d
}

// leaderboard ranks by meals descending, then name ascending.
func leaderboard(totals map[string]int, n int) []Contributor {
	out := make([]Contributor, 0, len(totals))
	for name, meals := range totals {
		out = append(out, Contributor{Name: name, Meals: meals})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meals != out[j].Meals {
			return out[i].Meals > out[j].Meals
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
