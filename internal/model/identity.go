package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Roles a session can take. There is no signup; the role is self-declared.
const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
)

// Actor is the party initiating a completion.
type Actor string

// Actors.
const (
	ActorDonor     Actor = RoleDonor
	ActorVolunteer Actor = RoleVolunteer
)

// ParseActor accepts "donor" or "volunteer" in any case.
func ParseActor(s string) (Actor, error) {
	switch Actor(strings.ToLower(strings.TrimSpace(s))) {
	case ActorDonor:
		return ActorDonor, nil
	case ActorVolunteer:
		return ActorVolunteer, nil
	}
	return "", fmt.Errorf("unknown actor %q", s)
}

// Identity is the lightweight name+phone identity of a donor or volunteer.
type Identity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// NewIdentity trims both fields and NFC-normalizes the name so that the same
// person typed on two devices compares equal.
func NewIdentity(name, phone string) Identity {
	return Identity{
		Name:  norm.NFC.String(strings.TrimSpace(name)),
		Phone: strings.TrimSpace(phone),
	}
}

// IsZero reports whether neither field is set.
func (id Identity) IsZero() bool {
	return id.Name == "" && id.Phone == ""
}

// Same compares two identities on both fields.
func (id Identity) Same(other Identity) bool {
	return id.Name == other.Name && id.Phone == other.Phone
}

// Validate checks that the name is present and the phone is well formed.
func (id Identity) Validate() error {
	if id.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidatePhone(id.Phone) {
		return fmt.Errorf("phone must be digits only, 7 to 13 characters")
	}
	return nil
}

// ValidatePhone reports whether p (after trimming) is 7 to 13 ASCII digits.
func ValidatePhone(p string) bool {
	p = strings.TrimSpace(p)
	if len(p) < 7 || len(p) > 13 {
		return false
	}
	for _, c := range p {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
