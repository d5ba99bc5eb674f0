package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scan-station/internal/domain"
	"scan-station/internal/profile"
	"scan-station/internal/service"
)

// ScanHandler starts and tracks background scan jobs.
type ScanHandler struct {
	scanService *service.ScanService
	docService  *service.DocumentService
	profiles    *profile.Store
	logger      domain.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanService *service.ScanService, docService *service.DocumentService, profiles *profile.Store, logger domain.Logger) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
		docService:  docService,
		profiles:    profiles,
		logger:      logger,
	}
}

type startScanRequest struct {
	DeviceID   string               `json:"device_id"`
	DocumentID string               `json:"document_id"`
	Mode       string               `json:"mode"`
	Profile    string               `json:"profile"`
	Settings   *domain.ScanSettings `json:"settings"`
}

// StartScan launches a scan job. Settings resolve in order: named profile,
// explicit settings, defaults. With no document id a fresh document is
// created for the capture.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	var req startScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	settings := domain.DefaultScanSettings()
	if req.Profile != "" {
		p, ok := h.profiles.Get(req.Profile)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown profile: "+req.Profile)
			return
		}
		settings = p
	} else if req.Settings != nil {
		settings = *req.Settings
	}

	documentID := req.DocumentID
	if documentID == "" {
		doc, err := h.docService.Create("Scan " + time.Now().Format("2006-01-02 15:04:05"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		documentID = doc.ID
	}

	mode := service.ScanMode(req.Mode)
	if mode == "" {
		mode = service.ScanModeSingle
	}

	job, err := h.scanService.StartScan(req.DeviceID, documentID, settings, mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// ListJobs returns every known scan job.
func (h *ScanHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scanService.ListJobs())
}

// GetJob returns one job's status and progress.
func (h *ScanHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.scanService.GetJob(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CancelJob requests cancellation; pages captured so far stay in the
// document.
func (h *ScanHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.scanService.CancelJob(id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling", "job_id": id})
}
