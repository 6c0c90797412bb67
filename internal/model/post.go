package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a post.
type Status string

// Post statuses.
const (
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusClaimed, StatusCompleted, StatusExpired}

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// ParseStatus normalizes case and surrounding whitespace. Unknown values are
// returned as-is so that a foreign record still loads.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// VegType classifies the food on offer.
type VegType string

// Food types.
const (
	VegTypeVeg    VegType = "Veg"
	VegTypeNonVeg VegType = "Non-veg"
	VegTypeMixed  VegType = "Mixed"
)

// VegTypes lists the accepted food types.
var VegTypes = []VegType{VegTypeVeg, VegTypeNonVeg, VegTypeMixed}

// ParseVegType accepts any casing of a known food type.
func ParseVegType(s string) (VegType, error) {
	s = strings.TrimSpace(s)
	for _, v := range VegTypes {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown food type %q", s)
}

// Post is one donor's surplus-food offer.
type Post struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	DonorName      string     `json:"donor_name"`
	DonorPhone     string     `json:"donor_phone"`
	FoodDesc       string     `json:"food_desc"`
	QtyMeals       int        `json:"qty_meals"`
	VegType        VegType    `json:"veg_type"`
	Allergens      string     `json:"allergens,omitempty"`
	Address        string     `json:"address"`
	ReadyUntil     *time.Time `json:"ready_until,omitempty"`
	ReadyUntilHHMM string     `json:"ready_until_hhmm,omitempty"`
	Status         Status     `json:"status"`
	ClaimerName    string     `json:"claimer_name,omitempty"`
	ClaimerPhone   string     `json:"claimer_phone,omitempty"`
	DonorCode      string     `json:"donor_code,omitempty"`
	VolunteerCode  string     `json:"volunteer_code,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Donor returns the identity of the poster.
func (p Post) Donor() Identity {
	return Identity{Name: p.DonorName, Phone: p.DonorPhone}
}

// Claimer returns the identity of the volunteer, or the zero Identity before a claim.
func (p Post) Claimer() Identity {
	return Identity{Name: p.ClaimerName, Phone: p.ClaimerPhone}
}

// RedactFor hides the handover codes the viewer is not entitled to see: the
// donor code is shown only to the donor, the volunteer code only to the claimer.
func (p Post) RedactFor(viewer Identity) Post {
	if viewer.IsZero() || !viewer.Same(p.Donor()) {
		p.DonorCode = ""
	}
	if viewer.IsZero() || !viewer.Same(p.Claimer()) {
		p.VolunteerCode = ""
	}
	return p
}
