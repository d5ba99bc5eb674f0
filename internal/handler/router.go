package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"scan-station/internal/config"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"scan-station"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(APIKeyMiddleware(container.GetConfig().GetAPIKey(), container.GetLogger()))

	deviceHandler := NewDeviceHandler(container.GetProber(), container.GetLogger())
	scanHandler := NewScanHandler(container.GetScanService(), container.GetDocumentService(), container.GetProfiles(), container.GetLogger())
	documentHandler := NewDocumentHandler(
		container.GetDocumentService(),
		container.GetOCRService(),
		container.GetExportService(),
		container.GetImportService(),
		container.GetStorageService(),
		container.GetSearchService(),
		container.GetLogger(),
	)
	searchHandler := NewSearchHandler(container.GetSearchService(), container.GetLogger())
	profileHandler := NewProfileHandler(container.GetProfiles(), container.GetLogger())

	// Device routes
	api.HandleFunc("/devices", deviceHandler.ListDevices).Methods("GET")
	api.HandleFunc("/devices/default", deviceHandler.GetDefaultDevice).Methods("GET")

	// Scan routes
	api.HandleFunc("/scan", scanHandler.StartScan).Methods("POST")
	api.HandleFunc("/scan/jobs", scanHandler.ListJobs).Methods("GET")
	api.HandleFunc("/scan/jobs/{id}", scanHandler.GetJob).Methods("GET")
	api.HandleFunc("/scan/jobs/{id}", scanHandler.CancelJob).Methods("DELETE")

	// Document routes
	api.HandleFunc("/documents", documentHandler.ListDocuments).Methods("GET")
	api.HandleFunc("/documents", documentHandler.CreateDocument).Methods("POST")
	api.HandleFunc("/documents/import", documentHandler.ImportDocument).Methods("POST")
	api.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", documentHandler.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/documents/{id}/pages/reorder", documentHandler.ReorderPages).Methods("POST")
	api.HandleFunc("/documents/{id}/pages/{pageID}", documentHandler.RemovePage).Methods("DELETE")
	api.HandleFunc("/documents/{id}/pages/{pageID}/rotate", documentHandler.RotatePage).Methods("POST")
	api.HandleFunc("/documents/{id}/pages/{pageID}/ocr", documentHandler.RecognizePage).Methods("POST")
	api.HandleFunc("/documents/{id}/export", documentHandler.ExportDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/index", documentHandler.IndexDocument).Methods("POST")

	// Search and profile routes
	api.HandleFunc("/search", searchHandler.Search).Methods("GET")
	api.HandleFunc("/profiles", profileHandler.ListProfiles).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // desktop UI dev server
			"http://localhost:4173",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-API-Key",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
