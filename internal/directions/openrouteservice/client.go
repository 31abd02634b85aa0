// Package openrouteservice provides a client for the OpenRouteService directions API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/provider/resilience"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to ORS API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SupportedProfiles returns the supported routing profiles.
func (c *Client) SupportedProfiles() []directions.Profile {
	return []directions.Profile{
		directions.ProfileDrive,
		directions.ProfileWalk,
	}
}

// GetDirections retrieves a route through the ordered waypoints.
func (c *Client) GetDirections(ctx context.Context, req directions.Request) (*directions.Result, error) {
	if len(req.Waypoints) < 2 {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "TOO_FEW_STOPS",
			Message:  "a route needs at least two stops",
			Err:      directions.ErrTooFewStops,
		}
	}

	profile := req.Profile
	if profile == "" {
		profile = directions.ProfileDrive
	}

	// ORS uses [lon, lat] order (GeoJSON)
	coords := make([][]float64, 0, len(req.Waypoints))
	for _, wp := range req.Waypoints {
		coords = append(coords, []float64{wp.Lon, wp.Lat})
	}

	orsReq := orsRequest{
		Coordinates: coords,
		Geometry:    true,
		Units:       "m",
		Language:    "en",
	}

	body, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	c.logger.Debug().
		Str("profile", string(profile)).
		Int("stops", len(req.Waypoints)).
		Msg("requesting directions from ORS")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      directions.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result, err := c.toResult(&orsResp, len(req.Waypoints))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("legs", len(result.Legs)).
		Msg("received directions from ORS")

	return result, nil
}

// handleErrorResponse maps ORS error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err != nil {
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("directions provider returned status %d", statusCode),
			Err:      directions.ErrProviderUnavailable,
		}
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      directions.ErrRateLimitExceeded,
		}
	case http.StatusForbidden:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check API key configuration",
			Err:      directions.ErrProviderUnavailable,
		}
	case http.StatusNotFound:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found through the given stops",
			Err:      directions.ErrNoRouteFound,
		}
	case http.StatusBadRequest:
		if orsErr.Error.Code == orsErrorCodeNotFound {
			return &directions.Error{
				Provider: ProviderName,
				Code:     "NO_ROUTE",
				Message:  orsErr.Error.Message,
				Err:      directions.ErrNoRouteFound,
			}
		}
		return &directions.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  orsErr.Error.Message,
			Err:      directions.ErrInvalidCoordinates,
		}
	default:
		if statusCode >= 500 {
			return &directions.Error{
				Provider: ProviderName,
				Code:     fmt.Sprintf("SERVER_%d", statusCode),
				Message:  "directions provider is temporarily unavailable",
				Err:      directions.ErrProviderUnavailable,
			}
		}
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  orsErr.Error.Message,
			Err:      directions.ErrProviderUnavailable,
		}
	}
}

// toResult converts the ORS response to the domain model. The first route is
// used; its segments become legs, one per consecutive waypoint pair.
func (c *Client) toResult(resp *orsResponse, waypointCount int) (*directions.Result, error) {
	if len(resp.Routes) == 0 {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "provider returned no routes",
			Err:      directions.ErrNoRouteFound,
		}
	}

	route := &resp.Routes[0]
	if len(route.Segments) != waypointCount-1 {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "SEGMENT_MISMATCH",
			Message: fmt.Sprintf("expected %d route segments, got %d",
				waypointCount-1, len(route.Segments)),
			Err: directions.ErrNoRouteFound,
		}
	}

	legs := make([]directions.Leg, 0, len(route.Segments))
	for _, seg := range route.Segments {
		legs = append(legs, directions.Leg{
			DistanceMeters:  int(seg.Distance),
			DurationSeconds: int(seg.Duration),
		})
	}

	return &directions.Result{
		Legs:             legs,
		GeometryPolyline: route.Geometry,
		Provider:         ProviderName,
		FetchedAt:        time.Now(),
	}, nil
}
