package domain

// Place is a point of interest. A place belongs to a trip when TripID is set;
// an empty TripID means it is a free-floating discoverable or favorited place.
type Place struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Rating        float64 `json:"rating"`
	Image         string  `json:"image,omitempty"`
	Description   string  `json:"description,omitempty"`
	Location      string  `json:"location,omitempty"`
	EstimatedTime string  `json:"estimatedTime,omitempty"`
	Price         string  `json:"price,omitempty"`
	Saved         bool    `json:"saved"`
	TripID        string  `json:"tripId,omitempty"`
}
