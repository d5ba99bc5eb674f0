package handler

import (
	"net/http"

	"scan-station/internal/domain"
	"scan-station/internal/profile"
)

// ProfileHandler lists the configured scan presets.
type ProfileHandler struct {
	profiles *profile.Store
	logger   domain.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles *profile.Store, logger domain.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

type profileResponse struct {
	Name     string              `json:"name"`
	Settings domain.ScanSettings `json:"settings"`
}

// ListProfiles returns every preset with its resolved settings.
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	names := h.profiles.Names()
	out := make([]profileResponse, 0, len(names))
	for _, name := range names {
		settings, _ := h.profiles.Get(name)
		out = append(out, profileResponse{Name: name, Settings: settings})
	}
	writeJSON(w, http.StatusOK, out)
}
