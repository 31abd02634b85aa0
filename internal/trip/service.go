package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripdeck/tripdeck/internal/api/models"
)

// Service errors.
var (
	ErrNotAuthorized = errors.New("not authorized to access this trip")
)

// Validation constants.
const (
	MaxTitleLength       = 120
	MaxDestinationLength = 120
	MaxAddressLength     = 300
	MaxTripDays          = 90
)

// Service provides trip and trip-item operations.
type Service struct {
	repo  Repository
	items ItemRepository
}

// NewService creates a new trip service.
func NewService(repo Repository, items ItemRepository) *Service {
	return &Service{repo: repo, items: items}
}

// List retrieves all trips for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedTrips, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Trip, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, ToAPITrip(t))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedTrips{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a trip by ID for a user.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	t, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	result := ToAPITrip(t)
	return &result, nil
}

// Create creates a new trip for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.TripCreateRequest) (*models.Trip, error) {
	if fieldErrors := validateTripCreate(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	t := &Trip{
		ID:          "trp_" + uuid.New().String()[:22],
		UserID:      userID,
		Title:       input.Title,
		Destination: input.Destination,
		StartDate:   dateOnly(input.StartDate.Time()),
		EndDate:     dateOnly(input.EndDate.Time()),
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	result := ToAPITrip(t)
	return &result, nil
}

// Update updates an existing trip for a user.
func (s *Service) Update(ctx context.Context, userID, tripID string, input *models.TripUpdateRequest) (*models.Trip, error) {
	t, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := validateTripUpdate(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Destination != nil {
		t.Destination = *input.Destination
	}
	if input.StartDate != nil {
		t.StartDate = dateOnly(input.StartDate.Time())
	}
	if input.EndDate != nil {
		t.EndDate = dateOnly(input.EndDate.Time())
	}
	if input.Status != nil {
		t.Status = Status(*input.Status)
	}
	if t.EndDate.Before(t.StartDate) {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "endDate", Message: "must not precede startDate"},
		}}
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	result := ToAPITrip(t)
	return &result, nil
}

// Delete deletes a trip for a user.
func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	if _, err := s.repo.GetByUserAndID(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tripID)
}

// ListItems retrieves all items for a trip owned by the user.
func (s *Service) ListItems(ctx context.Context, userID, tripID string) ([]models.TripItem, error) {
	if _, err := s.repo.GetByUserAndID(ctx, userID, tripID); err != nil {
		return nil, err
	}

	items, err := s.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	result := make([]models.TripItem, 0, len(items))
	for _, item := range items {
		result = append(result, ToAPITripItem(item))
	}
	return result, nil
}

// CreateItem adds an item to a trip owned by the user.
func (s *Service) CreateItem(ctx context.Context, userID, tripID string, input *models.TripItemCreateRequest) (*models.TripItem, error) {
	if _, err := s.repo.GetByUserAndID(ctx, userID, tripID); err != nil {
		return nil, err
	}

	if fieldErrors := validateItemInput(input.ItemType, input.Title, input.Lat, input.Lon, input.Address); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	item := &Item{
		ID:           "itm_" + uuid.New().String()[:22],
		TripID:       tripID,
		ItemType:     ItemType(input.ItemType),
		Title:        input.Title,
		StartAt:      timestampPtr(input.StartAt),
		EndAt:        timestampPtr(input.EndAt),
		Latitude:     input.Lat,
		Longitude:    input.Lon,
		LocationName: input.LocationName,
		Address:      input.Address,
		Position:     input.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	result := ToAPITripItem(item)
	return &result, nil
}

// UpdateItem updates an item in a trip owned by the user.
func (s *Service) UpdateItem(ctx context.Context, userID, tripID, itemID string, input *models.TripItemUpdateRequest) (*models.TripItem, error) {
	if _, err := s.repo.GetByUserAndID(ctx, userID, tripID); err != nil {
		return nil, err
	}

	item, err := s.items.Get(ctx, tripID, itemID)
	if err != nil {
		return nil, err
	}

	if input.ItemType != nil && !ValidItemType(ItemType(*input.ItemType)) {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "itemType", Message: "unknown item type"},
		}}
	}
	if input.Lat != nil || input.Lon != nil {
		lat, lon := item.Latitude, item.Longitude
		if input.Lat != nil {
			lat = input.Lat
		}
		if input.Lon != nil {
			lon = input.Lon
		}
		if fieldErrors := validateCoordinatePair(lat, lon); len(fieldErrors) > 0 {
			return nil, &ValidationError{Errors: fieldErrors}
		}
		item.Latitude = lat
		item.Longitude = lon
	}
	if input.ItemType != nil {
		item.ItemType = ItemType(*input.ItemType)
	}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, &ValidationError{Errors: []models.FieldError{
				{Field: "title", Message: "cannot be empty"},
			}}
		}
		item.Title = *input.Title
	}
	if input.StartAt != nil {
		item.StartAt = timestampPtr(input.StartAt)
	}
	if input.ClearStartAt {
		item.StartAt = nil
	}
	if input.EndAt != nil {
		item.EndAt = timestampPtr(input.EndAt)
	}
	if input.LocationName != nil {
		item.LocationName = input.LocationName
	}
	if input.Address != nil {
		item.Address = input.Address
	}
	if input.Position != nil {
		item.Position = *input.Position
	}
	item.UpdatedAt = time.Now()

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}

	result := ToAPITripItem(item)
	return &result, nil
}

// DeleteItem removes an item from a trip owned by the user.
func (s *Service) DeleteItem(ctx context.Context, userID, tripID, itemID string) error {
	if _, err := s.repo.GetByUserAndID(ctx, userID, tripID); err != nil {
		return err
	}
	return s.items.Delete(ctx, tripID, itemID)
}

func validateTripCreate(input *models.TripCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "is required"})
	} else if len(input.Title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
	}

	if len(input.Destination) > MaxDestinationLength {
		errs = append(errs, models.FieldError{Field: "destination", Message: "must be at most 120 characters"})
	}

	start := input.StartDate.Time()
	end := input.EndDate.Time()
	switch {
	case start.IsZero():
		errs = append(errs, models.FieldError{Field: "startDate", Message: "is required"})
	case end.IsZero():
		errs = append(errs, models.FieldError{Field: "endDate", Message: "is required"})
	case end.Before(start):
		errs = append(errs, models.FieldError{Field: "endDate", Message: "must not precede startDate"})
	case DaysBetween(start, end) >= MaxTripDays:
		errs = append(errs, models.FieldError{Field: "endDate", Message: "trip may span at most 90 days"})
	}

	return errs
}

func validateTripUpdate(input *models.TripUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Title != nil {
		if *input.Title == "" {
			errs = append(errs, models.FieldError{Field: "title", Message: "cannot be empty"})
		} else if len(*input.Title) > MaxTitleLength {
			errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
		}
	}

	if input.Destination != nil && len(*input.Destination) > MaxDestinationLength {
		errs = append(errs, models.FieldError{Field: "destination", Message: "must be at most 120 characters"})
	}

	if input.Status != nil {
		switch Status(*input.Status) {
		case StatusDraft, StatusActive, StatusCompleted:
		default:
			errs = append(errs, models.FieldError{Field: "status", Message: "must be draft, active or completed"})
		}
	}

	return errs
}

func validateItemInput(itemType, title string, lat, lon *float64, address *string) []models.FieldError {
	var errs []models.FieldError

	if !ValidItemType(ItemType(itemType)) {
		errs = append(errs, models.FieldError{Field: "itemType", Message: "unknown item type"})
	}

	if title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "is required"})
	} else if len(title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
	}

	errs = append(errs, validateCoordinatePair(lat, lon)...)

	if address != nil && len(*address) > MaxAddressLength {
		errs = append(errs, models.FieldError{Field: "address", Message: "must be at most 300 characters"})
	}

	return errs
}

// validateCoordinatePair requires latitude and longitude to be set together
// and within range. A fully absent pair is valid (item has no location).
func validateCoordinatePair(lat, lon *float64) []models.FieldError {
	var errs []models.FieldError

	if (lat == nil) != (lon == nil) {
		errs = append(errs, models.FieldError{Field: "lat", Message: "lat and lon must be provided together"})
		return errs
	}
	if lat == nil {
		return nil
	}

	if *lat < -90 || *lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be between -90 and 90"})
	}
	if *lon < -180 || *lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be between -180 and 180"})
	}

	return errs
}

// ToAPITrip converts a domain Trip to its API representation.
func ToAPITrip(t *Trip) models.Trip {
	return models.Trip{
		ID:          t.ID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   models.Date(t.StartDate),
		EndDate:     models.Date(t.EndDate),
		Status:      string(t.Status),
		Days:        t.Days(),
		CreatedAt:   models.Timestamp(t.CreatedAt),
		UpdatedAt:   models.Timestamp(t.UpdatedAt),
	}
}

// ToAPITripItem converts a domain Item to its API representation.
func ToAPITripItem(item *Item) models.TripItem {
	api := models.TripItem{
		ID:           item.ID,
		ItemType:     string(item.ItemType),
		Title:        item.Title,
		Lat:          item.Latitude,
		Lon:          item.Longitude,
		LocationName: item.LocationName,
		Address:      item.Address,
		Position:     item.Position,
		CreatedAt:    models.Timestamp(item.CreatedAt),
		UpdatedAt:    models.Timestamp(item.UpdatedAt),
	}
	if item.StartAt != nil {
		ts := models.Timestamp(*item.StartAt)
		api.StartAt = &ts
	}
	if item.EndAt != nil {
		ts := models.Timestamp(*item.EndAt)
		api.EndAt = &ts
	}
	return api
}

func timestampPtr(ts *models.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time()
	return &t
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
