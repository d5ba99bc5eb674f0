// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"scan-station/internal/domain"
	"scan-station/internal/scan"
)

// DeviceHandler exposes device discovery.
type DeviceHandler struct {
	prober *scan.Prober
	logger domain.Logger
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(prober *scan.Prober, logger domain.Logger) *DeviceHandler {
	return &DeviceHandler{prober: prober, logger: logger}
}

// ListDevices returns every connected scanner with probed capabilities.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.prober.ListDevices(r.Context())
	if err != nil {
		h.logger.Error("device enumeration failed", err)
		writeServiceError(w, err)
		return
	}
	if devices == nil {
		devices = make([]*domain.Device, 0)
	}
	writeJSON(w, http.StatusOK, devices)
}

// GetDefaultDevice returns the first connected scanner, or 404 when none is
// attached.
func (h *DeviceHandler) GetDefaultDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.prober.GetDefaultDevice(r.Context())
	if err != nil {
		h.logger.Error("device enumeration failed", err)
		writeServiceError(w, err)
		return
	}
	if device == nil {
		writeError(w, http.StatusNotFound, "no scanner connected")
		return
	}
	writeJSON(w, http.StatusOK, device)
}
