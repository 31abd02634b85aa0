package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tripdeck/tripdeck/internal/api/response"
	"github.com/tripdeck/tripdeck/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag admin endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all flags,
// built-in defaults included.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.GetAllFlags(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load feature flags")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"flags": flags,
	})
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - set flag values.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Flags map[string]json.RawMessage `json:"flags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(req.Flags) == 0 {
		response.BadRequest(w, r, "flags is required", nil)
		return
	}

	flags := make([]featureflags.Flag, 0, len(req.Flags))
	for key, value := range req.Flags {
		flags = append(flags, featureflags.Flag{Key: key, Value: value})
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
