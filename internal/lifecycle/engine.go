// Package lifecycle moves donation posts through their states:
//
//	open -> claimed -> completed
//	open | claimed -> expired
//
// Completed and expired are terminal. A donor cancelling an open post also
// lands in expired; there is no separate cancelled state.
//
// Every precondition is checked against the effective status of the freshest
// stored record, inside the same store transaction as the write.
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/foodrescue/internal/codes"
	"github.com/erazemk/foodrescue/internal/expiry"
	"github.com/erazemk/foodrescue/internal/model"
)

// DefaultReadyUntil is used when a post is created without a deadline.
const DefaultReadyUntil = "21:00"

// maxIDAttempts bounds id regeneration on the rare collision.
const maxIDAttempts = 5

// Store is the record store the engine runs on. *store.PostStore implements it.
type Store interface {
	LoadAll(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, fn func(posts []model.Post) ([]model.Post, error)) error
	Now() time.Time
	Location() *time.Location
}

// Limits bound the quantity of a post.
type Limits struct {
	MinMeals int
	MaxMeals int
}

// DefaultLimits are the bounds of the posting form.
var DefaultLimits = Limits{MinMeals: 1, MaxMeals: 2000}

// Engine implements the post lifecycle.
type Engine struct {
	store  Store
	issuer codes.Issuer
	limits Limits
}

// New creates an engine. A zero Limits selects DefaultLimits.
func New(store Store, issuer codes.Issuer, limits Limits) *Engine {
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	return &Engine{store: store, issuer: issuer, limits: limits}
}

// Limits returns the quantity bounds in force.
func (e *Engine) Limits() Limits { return e.limits }

// CreateInput holds the attributes a donor fills in.
type CreateInput struct {
	FoodDesc  string `json:"food_desc"`
	QtyMeals  int    `json:"qty_meals"`
	VegType   string `json:"veg_type"`
	Allergens string `json:"allergens"`
	Address   string `json:"address"`
	// ReadyUntil is a time of day (HH:MM) on the current date.
	ReadyUntil string `json:"ready_until"`
}

// Create validates the input and appends a new open post with a fresh donor code.
func (e *Engine) Create(ctx context.Context, donor model.Identity, in CreateInput) (*model.Post, error) {
	donor = model.NewIdentity(donor.Name, donor.Phone)
	if err := donor.Validate(); err != nil {
		return nil, invalid("donor", "%v", err)
	}

	desc := strings.TrimSpace(in.FoodDesc)
	address := strings.TrimSpace(in.Address)
	if desc == "" {
		return nil, invalid("food_desc", "food description is required")
	}
	if address == "" {
		return nil, invalid("address", "pickup address is required")
	}
	if in.QtyMeals < e.limits.MinMeals || in.QtyMeals > e.limits.MaxMeals {
		return nil, invalid("qty_meals", "must be between %d and %d", e.limits.MinMeals, e.limits.MaxMeals)
	}
	vegType, err := model.ParseVegType(in.VegType)
	if err != nil {
		return nil, invalid("veg_type", "must be one of Veg, Non-veg, Mixed")
	}

	hhmm := strings.TrimSpace(in.ReadyUntil)
	if hhmm == "" {
		hhmm = DefaultReadyUntil
	}
	now := e.store.Now()
	readyUntil, err := expiry.ReadyUntil(now, hhmm, e.store.Location())
	if err != nil {
		return nil, invalid("ready_until", "%v", err)
	}

	donorCode, err := e.issuer.Code()
	if err != nil {
		return nil, err
	}

	p := model.Post{
		CreatedAt:      now,
		DonorName:      donor.Name,
		DonorPhone:     donor.Phone,
		FoodDesc:       desc,
		QtyMeals:       in.QtyMeals,
		VegType:        vegType,
		Allergens:      strings.TrimSpace(in.Allergens),
		Address:        address,
		ReadyUntil:     &readyUntil,
		ReadyUntilHHMM: readyUntil.Format(expiry.HHMM),
		Status:         model.StatusOpen,
		DonorCode:      donorCode,
	}

	err = e.store.Update(ctx, func(posts []model.Post) ([]model.Post, error) {
		id, err := e.uniqueID(posts, now)
		if err != nil {
			return nil, err
		}
		p.ID = id
		return append(posts, p), nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (e *Engine) uniqueID(posts []model.Post, now time.Time) (string, error) {
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		var err error
		id, err = e.issuer.ID(now)
		if err != nil {
			return "", err
		}
		if indexOf(posts, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocating post id: %d collisions in a row, last %s", maxIDAttempts, id)
}

// Claim moves an open post to claimed for the volunteer and returns the fresh
// volunteer code. The code is the volunteer's proof at handover and is shown
// to them only here and in their own claims.
func (e *Engine) Claim(ctx context.Context, postID string, volunteer model.Identity) (string, error) {
	volunteer = model.NewIdentity(volunteer.Name, volunteer.Phone)
	if err := volunteer.Validate(); err != nil {
		return "", invalid("volunteer", "%v", err)
	}
	postID = strings.TrimSpace(postID)

	var code string
	err := e.transition(ctx, postID, "claim", model.StatusOpen, func(p *model.Post, _ time.Time) error {
		c, err := e.issuer.Code()
		if err != nil {
			return err
		}
		code = c
		p.Status = model.StatusClaimed
		p.ClaimerName = volunteer.Name
		p.ClaimerPhone = volunteer.Phone
		p.VolunteerCode = c
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Complete moves a claimed post to completed. The actor must present the
// other party's code: a volunteer presents the donor code, a donor presents
// the volunteer code.
func (e *Engine) Complete(ctx context.Context, postID, presented string, actor model.Actor) (*model.Post, error) {
	if actor != model.ActorDonor && actor != model.ActorVolunteer {
		return nil, invalid("actor", "must be donor or volunteer")
	}
	postID = strings.TrimSpace(postID)
	presented = strings.TrimSpace(presented)

	var out model.Post
	err := e.transition(ctx, postID, "complete", model.StatusClaimed, func(p *model.Post, now time.Time) error {
		expected := p.VolunteerCode
		if actor == model.ActorVolunteer {
			expected = p.DonorCode
		}
		if presented == "" || presented != strings.TrimSpace(expected) {
			return ErrCodeMismatch
		}
		p.Status = model.StatusCompleted
		p.CompletedAt = &now
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel withdraws an open post. It becomes expired with its deadline moved
// to now, so later expiry evaluation agrees with the stored status.
func (e *Engine) Cancel(ctx context.Context, postID string) (*model.Post, error) {
	postID = strings.TrimSpace(postID)

	var out model.Post
	err := e.transition(ctx, postID, "cancel", model.StatusOpen, func(p *model.Post, now time.Time) error {
		p.Status = model.StatusExpired
		p.ReadyUntil = &now
		p.ReadyUntilHHMM = now.Format(expiry.HHMM)
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// transition runs one read-check-write on a single post inside a store update.
func (e *Engine) transition(ctx context.Context, postID, op string, required model.Status, apply func(p *model.Post, now time.Time) error) error {
	return e.store.Update(ctx, func(posts []model.Post) ([]model.Post, error) {
		i := indexOf(posts, postID)
		if postID == "" || i < 0 {
			return nil, ErrNotFound
		}

		now := e.store.Now()
		current := expiry.EffectiveStatus(posts[i], now)
		if current != required {
			return nil, &InvalidStateError{Op: op, Current: current, Required: required}
		}

		if err := apply(&posts[i], now); err != nil {
			return nil, err
		}
		return posts, nil
	})
}

func indexOf(posts []model.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the post with the given id, with its effective status.
func (e *Engine) Get(ctx context.Context, postID string) (*model.Post, error) {
	posts, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, strings.TrimSpace(postID))
	if i < 0 {
		return nil, ErrNotFound
	}
	p := posts[i]
	return &p, nil
}

// ListFilter narrows List. Zero fields do not filter.
type ListFilter struct {
	Status  model.Status
	VegType model.VegType
	MinQty  int
	// OnlyUnexpired drops posts whose effective status is expired. A completed
	// post stays listed after its deadline passes.
	OnlyUnexpired bool
	// Donor and Claimer match on phone, and on name when it is set.
	Donor   model.Identity
	Claimer model.Identity
	// NewestFirst sorts by id descending instead of insertion order.
	NewestFirst bool
}

// List returns the posts matching f. The expiry policy is applied first, so
// filtering on status sees effective statuses.
func (e *Engine) List(ctx context.Context, f ListFilter) ([]model.Post, error) {
	posts, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := []model.Post{}
	for _, p := range posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.VegType != "" && p.VegType != f.VegType {
			continue
		}
		if f.MinQty > 0 && p.QtyMeals < f.MinQty {
			continue
		}
		if f.OnlyUnexpired && p.Status == model.StatusExpired {
			continue
		}
		if !matches(f.Donor, p.Donor()) || !matches(f.Claimer, p.Claimer()) {
			continue
		}
		out = append(out, p)
	}

	if f.NewestFirst {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out, nil
}

func matches(want, got model.Identity) bool {
	if want.IsZero() {
		return true
	}
	if want.Phone != "" && want.Phone != got.Phone {
		return false
	}
	return want.Name == "" || want.Name == got.Name
}
