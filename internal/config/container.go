package config

import (
	"context"
	"fmt"

	"scan-station/internal/domain"
	"scan-station/internal/profile"
	"scan-station/internal/repository"
	"scan-station/internal/scan"
	"scan-station/internal/service"
	"scan-station/internal/wia"
	"scan-station/internal/wia/simdriver"
	"scan-station/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config domain.Config
	Logger domain.Logger

	Driver        wia.Driver
	Prober        *scan.Prober
	SessionDriver *scan.SessionDriver

	DocumentRepository domain.DocumentRepository
	Profiles           *profile.Store

	DocumentService *service.DocumentService
	EnhanceService  *service.EnhanceService
	OCRService      *service.OCRService
	ExportService   *service.ExportService
	ImportService   *service.ImportService
	StorageService  *service.StorageService
	SearchService   *service.SearchService
	ScanService     *service.ScanService
}

// NewContainer creates a new dependency injection container. Optional
// integrations (cloud OCR, cloud storage, semantic search) are wired only
// when their configuration is present.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	driver, err := newDriver(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	scanLogger := logger.Component(appLogger, "scan")
	prober := scan.NewProber(driver, scanLogger)
	sessions := scan.NewSessionDriver(driver, scanLogger)

	profiles, err := profile.Load(cfg.GetProfilesPath())
	if err != nil {
		return nil, fmt.Errorf("load scan profiles: %w", err)
	}

	documentRepo := repository.NewMemoryDocumentRepository()
	documentService := service.NewDocumentService(documentRepo, appLogger)
	enhanceService := service.NewEnhanceService(appLogger)
	exportService := service.NewExportService(appLogger)
	importService := service.NewImportService(appLogger)

	ocrService, err := newOCRService(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}
	storageService, err := newStorageService(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}
	searchService, err := newSearchService(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	scanService := service.NewScanService(sessions, documentService, enhanceService, ocrService, scanLogger)

	return &Container{
		Config:             cfg,
		Logger:             appLogger,
		Driver:             driver,
		Prober:             prober,
		SessionDriver:      sessions,
		DocumentRepository: documentRepo,
		Profiles:           profiles,
		DocumentService:    documentService,
		EnhanceService:     enhanceService,
		OCRService:         ocrService,
		ExportService:      exportService,
		ImportService:      importService,
		StorageService:     storageService,
		SearchService:      searchService,
		ScanService:        scanService,
	}, nil
}

// newDriver selects the scanner backend. The simulated driver is the only
// backend that runs everywhere; real hardware backends register under their
// own names.
func newDriver(cfg domain.Config, appLogger domain.Logger) (wia.Driver, error) {
	switch cfg.GetDriverName() {
	case "sim":
		return simdriver.NewDefault(), nil
	default:
		return nil, fmt.Errorf("unknown scanner driver %q", cfg.GetDriverName())
	}
}

func newOCRService(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*service.OCRService, error) {
	offline := service.NewTesseractEngine()

	var cloud service.OCREngine
	if cfg.GetVertexProjectID() != "" {
		vertex, err := service.NewVertexEngine(ctx, cfg.GetVertexProjectID(), cfg.GetVertexLocation())
		if err != nil {
			return nil, fmt.Errorf("init vertex ocr engine: %w", err)
		}
		cloud = vertex
	}
	return service.NewOCRService(offline, cloud, appLogger), nil
}

func newStorageService(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*service.StorageService, error) {
	var backends []service.StorageBackend
	if cfg.GetSupabaseURL() != "" && cfg.GetSupabaseKey() != "" {
		backends = append(backends, service.NewSupabaseStorage(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), cfg.GetStorageBucket()))
	}
	if cfg.GetS3Bucket() != "" {
		s3Backend, err := service.NewS3Storage(ctx, cfg.GetS3Bucket(), cfg.GetS3Region())
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		backends = append(backends, s3Backend)
	}
	return service.NewStorageService(appLogger, backends...), nil
}

// newSearchService wires semantic search when both the vector store and the
// embedding backend are configured; otherwise it returns nil and the API
// reports search as not configured.
func newSearchService(cfg domain.Config, appLogger domain.Logger) (*service.SearchService, error) {
	if cfg.GetVertexProjectID() == "" || cfg.GetSupabaseURL() == "" || cfg.GetSupabaseKey() == "" {
		return nil, nil
	}
	supabaseClient := repository.NewSupabaseClient(cfg, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	vectorRepo := repository.NewSupabaseVectorRepository(supabaseClient, appLogger)
	return service.NewSearchService(vectorRepo, cfg.GetVertexProjectID(), cfg.GetVertexLocation(), appLogger), nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetProber returns the device prober
func (c *Container) GetProber() *scan.Prober {
	return c.Prober
}

// GetSessionDriver returns the scan session driver
func (c *Container) GetSessionDriver() *scan.SessionDriver {
	return c.SessionDriver
}

// GetProfiles returns the loaded scan presets
func (c *Container) GetProfiles() *profile.Store {
	return c.Profiles
}

// GetDocumentService returns the document service instance
func (c *Container) GetDocumentService() *service.DocumentService {
	return c.DocumentService
}

// GetEnhanceService returns the enhancement service instance
func (c *Container) GetEnhanceService() *service.EnhanceService {
	return c.EnhanceService
}

// GetOCRService returns the OCR service instance
func (c *Container) GetOCRService() *service.OCRService {
	return c.OCRService
}

// GetExportService returns the export service instance
func (c *Container) GetExportService() *service.ExportService {
	return c.ExportService
}

// GetImportService returns the import service instance
func (c *Container) GetImportService() *service.ImportService {
	return c.ImportService
}

// GetStorageService returns the storage service instance
func (c *Container) GetStorageService() *service.StorageService {
	return c.StorageService
}

// GetSearchService returns the search service instance; nil when search is
// not configured
func (c *Container) GetSearchService() *service.SearchService {
	return c.SearchService
}

// GetScanService returns the scan job service instance
func (c *Container) GetScanService() *service.ScanService {
	return c.ScanService
}
