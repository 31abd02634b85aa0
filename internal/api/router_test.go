package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripdeck/tripdeck/internal/api"
	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/auth"
	"github.com/tripdeck/tripdeck/internal/booking"
	"github.com/tripdeck/tripdeck/internal/featureflags"
	"github.com/tripdeck/tripdeck/internal/itinerary"
	"github.com/tripdeck/tripdeck/internal/trip"
	"github.com/tripdeck/tripdeck/internal/user"
)

const testUserID = "usr_testuser123"

// testAuthService creates an auth service for testing.
func testAuthService() *auth.Service {
	return auth.NewService(auth.ServiceConfig{
		JWTService:    testJWTService(),
		UserRepo:      auth.NewInMemoryUserRepository(),
		RefreshRepo:   auth.NewInMemoryRefreshTokenRepository(),
		DefaultLocale: "en-US",
		BcryptCost:    bcrypt.MinCost,
	})
}

// testJWTService creates a JWT service for generating test tokens.
func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.tripdeck.app",
		Audience:   "tripdeck-api",
	})
}

// generateTestToken generates a valid test token for the seeded user.
func generateTestToken(t *testing.T) string {
	t.Helper()
	jwtService := testJWTService()
	u := &auth.User{
		ID:          testUserID,
		Email:       "test@example.com",
		DisplayName: "Test User",
		Locale:      "en-US",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	token, _, err := jwtService.GenerateAccessToken(u)
	require.NoError(t, err)
	return token
}

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)

	userRepo := user.NewInMemoryRepository()
	userRepo.Put(&user.User{
		ID:          testUserID,
		Email:       "test@example.com",
		DisplayName: "Test User",
		Locale:      "en-US",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})

	tripRepo := trip.NewInMemoryRepository()
	itemRepo := trip.NewInMemoryItemRepository()
	tripService := trip.NewService(tripRepo, itemRepo)

	itineraryService := itinerary.NewService(itinerary.ServiceConfig{
		Trips:  tripRepo,
		Items:  itemRepo,
		Logger: logger,
	})

	flagService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepository(),
		Logger:     logger,
	})

	bookingService := booking.NewService(booking.ServiceConfig{
		Repo:   booking.NewInMemoryRepository(),
		Trips:  tripRepo,
		Flags:  flagService,
		Logger: logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "2026-01-01T00:00:00Z",
		Logger:             logger,
		AuthService:        testAuthService(),
		UserService:        user.NewService(userRepo),
		TripService:        tripService,
		ItineraryService:   itineraryService,
		BookingService:     bookingService,
		FeatureFlagService: flagService,
	})
}

// addAuthHeader adds a valid Bearer token to the request.
func addAuthHeader(t *testing.T, req *http.Request) {
	t.Helper()
	token := generateTestToken(t)
	req.Header.Set("Authorization", "Bearer "+token)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	addAuthHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	router := newTestRouter()

	registerBody, _ := json.Marshal(auth.RegisterRequest{
		Email:       "new@example.com",
		Password:    "supersecret1",
		DisplayName: "New User",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var tokens auth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	loginBody, _ := json.Marshal(auth.LoginRequest{
		Email:    "new@example.com",
		Password: "supersecret1",
	})

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Login_WrongPassword(t *testing.T) {
	router := newTestRouter()

	loginBody, _ := json.Marshal(auth.LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrongpassword",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_GetMe(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me", http.NoBody)
	addAuthHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var me models.Me
	err := json.Unmarshal(w.Body.Bytes(), &me)
	require.NoError(t, err)

	assert.Equal(t, testUserID, me.UserID)
	assert.Equal(t, "test@example.com", me.Email)
}

func TestRouter_GetMe_Unauthenticated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// createTestTrip posts a trip through the API and returns its representation.
func createTestTrip(t *testing.T, router http.Handler) models.Trip {
	t.Helper()

	body, _ := json.Marshal(models.TripCreateRequest{
		Title:       "Lisbon long weekend",
		Destination: "Lisbon, Portugal",
		StartDate:   models.Date(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:     models.Date(time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, w.Header().Get("Location"))

	var created models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestRouter_TripCRUD(t *testing.T) {
	router := newTestRouter()

	created := createTestTrip(t, router)
	assert.Equal(t, "Lisbon long weekend", created.Title)
	assert.Equal(t, 3, created.Days)

	// List
	req := httptest.NewRequest(http.MethodGet, "/v1/me/trips", http.NoBody)
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var paged models.PagedTrips
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paged))
	assert.Len(t, paged.Items, 1)

	// Update
	title := "Lisbon in June"
	updateBody, _ := json.Marshal(models.TripUpdateRequest{Title: &title})
	req = httptest.NewRequest(http.MethodPut, "/v1/me/trips/"+created.ID, bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Lisbon in June", updated.Title)

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/v1/me/trips/"+created.ID, http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone
	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID, http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_TripItemsAndBoard(t *testing.T) {
	router := newTestRouter()
	created := createTestTrip(t, router)

	itemBody, _ := json.Marshal(models.TripItemCreateRequest{
		ItemType: "activity",
		Title:    "Castle tour",
		StartAt:  timestampPtr(time.Date(2026, time.June, 2, 10, 0, 0, 0, time.UTC)),
		Lat:      float64Ptr(38.7139),
		Lon:      float64Ptr(-9.1335),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips/"+created.ID+"/items", bytes.NewReader(itemBody))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item models.TripItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Castle tour", item.Title)

	// Board partitions the item into day 1 (June 2nd of a June 1-3 trip)
	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID+"/board", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var board models.TripBoard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Days, 3)
	assert.Empty(t, board.Days[0].Items)
	require.Len(t, board.Days[1].Items, 1)
	assert.Equal(t, item.ID, board.Days[1].Items[0].ID)
	assert.Empty(t, board.Unscheduled)

	// Reorder the item to day 0
	reorderBody, _ := json.Marshal(models.ReorderRequest{
		ItemID:   item.ID,
		DayIndex: 0,
		Position: 0,
	})
	req = httptest.NewRequest(http.MethodPost, "/v1/me/trips/"+created.ID+"/board/reorder", bytes.NewReader(reorderBody))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Days[0].Items, 1)
	assert.Empty(t, board.Days[1].Items)
}

func TestRouter_DaySegments(t *testing.T) {
	router := newTestRouter()
	created := createTestTrip(t, router)

	// Two located items on the same day produce one heuristic segment
	for i, loc := range []struct {
		title    string
		lat, lon float64
		hour     int
	}{
		{"Miradouro", 38.7139, -9.1335, 9},
		{"Oceanarium", 38.7633, -9.0950, 14},
	} {
		itemBody, _ := json.Marshal(models.TripItemCreateRequest{
			ItemType: "activity",
			Title:    loc.title,
			StartAt:  timestampPtr(time.Date(2026, time.June, 1, loc.hour, 0, 0, 0, time.UTC)),
			Lat:      float64Ptr(loc.lat),
			Lon:      float64Ptr(loc.lon),
			Position: i,
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/me/trips/"+created.ID+"/items", bytes.NewReader(itemBody))
		req.Header.Set("Content-Type", "application/json")
		addAuthHeader(t, req)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID+"/board/days/0/segments", http.NoBody)
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var segments models.DaySegments
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &segments))
	assert.Equal(t, 0, segments.DayIndex)
	require.Len(t, segments.Segments, 1)
	assert.Equal(t, models.SegmentSourceHeuristic, segments.Segments[0].Source)
	assert.Greater(t, segments.Segments[0].DistanceKm, 0.0)

	// Out-of-range day index
	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID+"/board/days/9/segments", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_BookingWizardsAndQuote(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/wizards", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var wizards struct {
		Wizards []models.BookingWizard `json:"wizards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wizards))
	require.Len(t, wizards.Wizards, 3)
	assert.Equal(t, "car", wizards.Wizards[0].Kind)

	quoteBody, _ := json.Marshal(models.BookingQuoteRequest{Kind: "car", Units: 3})
	req = httptest.NewRequest(http.MethodPost, "/v1/bookings/quote", bytes.NewReader(quoteBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var quote models.BookingQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, 135.00, quote.Subtotal)
	assert.Equal(t, 13.50, quote.ServiceFee)
	assert.Equal(t, 148.50, quote.Total)
	assert.Equal(t, "EUR", quote.Currency)
}

func TestRouter_CreateBooking(t *testing.T) {
	router := newTestRouter()
	created := createTestTrip(t, router)

	bookingBody, _ := json.Marshal(models.BookingCreateRequest{Kind: "event", Units: 2})
	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips/"+created.ID+"/bookings", bytes.NewReader(bookingBody))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "pending", b.Status)
	assert.Equal(t, 67.20, b.Quote.Total)

	// Cancel it
	req = httptest.NewRequest(http.MethodPost, "/v1/me/bookings/"+b.ID+"/cancel", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "cancelled", b.Status)
}

func TestRouter_BookingDecision(t *testing.T) {
	router := newTestRouter()
	created := createTestTrip(t, router)

	bookingBody, _ := json.Marshal(models.BookingCreateRequest{Kind: "restaurant", Units: 4})
	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips/"+created.ID+"/bookings", bytes.NewReader(bookingBody))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/bookings/"+b.ID+"/confirm", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "confirmed", b.Status)

	// A decided booking cannot be rejected afterwards.
	req = httptest.NewRequest(http.MethodPost, "/v1/admin/bookings/"+b.ID+"/reject", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_FeatureFlags(t *testing.T) {
	router := newTestRouter()

	body := []byte(`{"flags":{"disable_bookings":true}}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/feature-flags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
	addAuthHeader(t, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "disable_bookings")
}

func TestRouter_ValidationProblem(t *testing.T) {
	router := newTestRouter()

	// End date precedes start date
	body, _ := json.Marshal(models.TripCreateRequest{
		Title:       "Backwards",
		Destination: "Nowhere",
		StartDate:   models.Date(time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)),
		EndDate:     models.Date(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func timestampPtr(t time.Time) *models.Timestamp {
	ts := models.Timestamp(t)
	return &ts
}

func float64Ptr(v float64) *float64 {
	return &v
}
