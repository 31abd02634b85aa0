package models

// Trip represents a planned trip.
type Trip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination,omitempty"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	Status      string    `json:"status"`
	Days        int       `json:"days"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// PagedTrips is a paginated list of trips.
type PagedTrips struct {
	Items []Trip            `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// TripCreateRequest is the request body for creating a trip.
type TripCreateRequest struct {
	Title       string `json:"title" validate:"required,max=120"`
	Destination string `json:"destination,omitempty" validate:"max=120"`
	StartDate   Date   `json:"startDate" validate:"required"`
	EndDate     Date   `json:"endDate" validate:"required"`
}

// TripUpdateRequest is the request body for updating a trip. All fields are
// optional; absent fields are left unchanged.
type TripUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Destination *string `json:"destination,omitempty"`
	StartDate   *Date   `json:"startDate,omitempty"`
	EndDate     *Date   `json:"endDate,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// TripItem represents a scheduled or unscheduled activity within a trip.
type TripItem struct {
	ID           string     `json:"id"`
	ItemType     string     `json:"itemType"`
	Title        string     `json:"title"`
	StartAt      *Timestamp `json:"startAt,omitempty"`
	EndAt        *Timestamp `json:"endAt,omitempty"`
	Lat          *float64   `json:"lat,omitempty"`
	Lon          *float64   `json:"lon,omitempty"`
	LocationName *string    `json:"locationName,omitempty"`
	Address      *string    `json:"address,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    Timestamp  `json:"createdAt"`
	UpdatedAt    Timestamp  `json:"updatedAt"`
}

// TripItemCreateRequest is the request body for adding an item to a trip.
type TripItemCreateRequest struct {
	ItemType     string     `json:"itemType" validate:"required"`
	Title        string     `json:"title" validate:"required,max=120"`
	StartAt      *Timestamp `json:"startAt,omitempty"`
	EndAt        *Timestamp `json:"endAt,omitempty"`
	Lat          *float64   `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon          *float64   `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	LocationName *string    `json:"locationName,omitempty"`
	Address      *string    `json:"address,omitempty" validate:"omitempty,max=300"`
	Position     int        `json:"position"`
}

// TripItemUpdateRequest is the request body for updating a trip item.
// ClearStartAt moves an item back to the unscheduled backlog.
type TripItemUpdateRequest struct {
	ItemType     *string    `json:"itemType,omitempty"`
	Title        *string    `json:"title,omitempty"`
	StartAt      *Timestamp `json:"startAt,omitempty"`
	ClearStartAt bool       `json:"clearStartAt,omitempty"`
	EndAt        *Timestamp `json:"endAt,omitempty"`
	Lat          *float64   `json:"lat,omitempty"`
	Lon          *float64   `json:"lon,omitempty"`
	LocationName *string    `json:"locationName,omitempty"`
	Address      *string    `json:"address,omitempty"`
	Position     *int       `json:"position,omitempty"`
}
