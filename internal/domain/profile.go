package domain

import "time"

// UserType distinguishes a locally simulated guest from an authenticated
// identity. Neither is a security boundary — the engine has no server.
type UserType string

const (
	UserGuest         UserType = "guest"
	UserAuthenticated UserType = "authenticated"
)

// Preferences are the user-tunable privacy toggles.
type Preferences struct {
	Notifications   bool `json:"notifications"`
	LocationSharing bool `json:"locationSharing"`
	PublicProfile   bool `json:"publicProfile"`
}

// Stats are derived counters, recomputable from the other stores.
type Stats struct {
	TripsCompleted   int     `json:"tripsCompleted"`
	PlacesVisited    int     `json:"placesVisited"`
	TotalExpenses    float64 `json:"totalExpenses"`
	FriendsConnected int     `json:"friendsConnected"`
}

// UserProfile is the single local user record. At most one profile resides
// in storage at a time; creating a new session replaces it.
// Email is the de facto user key app-wide and is not verified.
type UserProfile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Avatar       string      `json:"avatar,omitempty"`
	UserType     UserType    `json:"userType"`
	IsActive     bool        `json:"isActive"`
	Preferences  Preferences `json:"preferences"`
	Stats        Stats       `json:"stats"`
	HomeCity     string      `json:"homeCity,omitempty"`
	HomeCountry  string      `json:"homeCountry,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActiveAt time.Time   `json:"lastActiveAt"`
}

// Session is the ephemeral login record, removed on sign-out while the
// profile itself is retained. Access is granted only when the session says
// logged in AND the stored profile is active — both must agree.
type Session struct {
	IsLoggedIn bool      `json:"isLoggedIn"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DefaultProfile is the profile shape substituted when no profile exists,
// e.g. when exporting from a device that never created a session.
func DefaultProfile() UserProfile {
	now := time.Now().UTC()
	return UserProfile{
		ID:       NewID("user"),
		Name:     "Traveller",
		UserType: UserGuest,
		Preferences: Preferences{
			Notifications:   false,
			LocationSharing: false,
			PublicProfile:   false,
		},
		CreatedAt:    now,
		LastActiveAt: now,
	}
}
