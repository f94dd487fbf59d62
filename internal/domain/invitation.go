package domain

import "time"

// InvitationStatus is the lifecycle state of a trip invitation.
// pending → accepted and pending → declined are the only transitions;
// both end states are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// TripInvitation is a pending offer of collaborator status. It lives both
// embedded in its trip and in a flat lookup store keyed by invitation ID, so
// per-user invitation queries don't scan every trip. Both copies must
// transition status together.
type TripInvitation struct {
	ID        string           `json:"id"`
	TripID    string           `json:"tripId"`
	Email     string           `json:"email"`
	InvitedBy string           `json:"invitedBy"`
	InvitedAt time.Time        `json:"invitedAt"`
	Status    InvitationStatus `json:"status"`
	Role      Role             `json:"role"` // editor or viewer, never owner
}

// PendingInvitation is an invitation enriched with its trip's title for
// per-user listing. TripTitle falls back to "Unknown Trip" when the trip was
// deleted after inviting.
type PendingInvitation struct {
	TripInvitation
	TripTitle string `json:"tripTitle"`
}
