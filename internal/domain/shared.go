package domain

import "time"

// SharedData is the portable snapshot of one device's entire dataset.
// It is what a share link encodes and what the merge routine consumes.
// The JSON shape is part of the share-link wire format — changing field
// names breaks links generated by older installs.
type SharedData struct {
	Trips    []Trip      `json:"trips"`
	Places   []Place     `json:"places"`
	Expenses []Expense   `json:"expenses"`
	Profile  UserProfile `json:"profile"`
	LastSync time.Time   `json:"lastSync"`
}
