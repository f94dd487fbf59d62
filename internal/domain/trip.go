// Package domain contains the core data types for the TripVault engine.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (kv, repo, service, handler).
package domain

import "time"

// Visibility controls whether a trip appears in the public feed.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Role is the access level of a collaborator on a trip.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Trip is the top-level aggregate: collaborators, invitations, partners and
// fellow travellers are embedded, places and expenses reference it by TripID.
//
// StartDate and EndDate are ISO "2006-01-02" strings and may both be empty
// when the dates are undecided, in which case PlannedDurationDays stands in.
type Trip struct {
	ID                  string             `json:"id"`
	Title               string             `json:"title"`
	Destination         string             `json:"destination"`
	StartDate           string             `json:"startDate,omitempty"`
	EndDate             string             `json:"endDate,omitempty"`
	PlannedDurationDays int                `json:"plannedDurationDays,omitempty"`
	Image               string             `json:"image,omitempty"`
	Participants        int                `json:"participants"`
	PlacesCount         int                `json:"placesCount"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
	Visibility          Visibility         `json:"visibility"`
	ShareID             string             `json:"shareId,omitempty"` // set iff Visibility is private
	CreatedBy           string             `json:"createdBy"`         // owner's email
	Currency            string             `json:"currency,omitempty"`
	Collaborators       []TripCollaborator `json:"collaborators"`
	Invitations         []TripInvitation   `json:"invitations"`
	Partners            []TripPartner      `json:"partners"`
	FellowTravellers    []FellowTraveller  `json:"fellowTravellers"`
}

// TripCollaborator is a user with a persistent role on a trip.
// Created at trip creation (owner) or by accepting an invitation.
type TripCollaborator struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// TripPartner is a named participant with no access rights, used for
// expense splitting and member-count display only.
type TripPartner struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	AddedAt time.Time `json:"addedAt"`
	AddedBy string    `json:"addedBy"`
}

// FellowTraveller has the same shape as TripPartner but is tracked in its
// own list on the trip.
type FellowTraveller struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	AddedAt time.Time `json:"addedAt"`
	AddedBy string    `json:"addedBy"`
}

// RoleOf returns the role the given email holds on the trip, or false when
// the email is not a collaborator. Matching is by exact email — the email is
// the de facto user key throughout the engine.
func (t Trip) RoleOf(email string) (Role, bool) {
	for _, c := range t.Collaborators {
		if c.Email == email {
			return c.Role, true
		}
	}
	return "", false
}

// CanEdit reports whether the given email may modify the trip.
// Owners and editors may edit; viewers and non-collaborators may not.
func (t Trip) CanEdit(email string) bool {
	role, ok := t.RoleOf(email)
	return ok && (role == RoleOwner || role == RoleEditor)
}

// IsOwner reports whether the given email holds the owner role.
func (t Trip) IsOwner(email string) bool {
	role, ok := t.RoleOf(email)
	return ok && role == RoleOwner
}

// MemberCount is the display count of everyone attached to the trip:
// collaborators, partners and fellow travellers.
func (t Trip) MemberCount() int {
	return len(t.Collaborators) + len(t.Partners) + len(t.FellowTravellers)
}
