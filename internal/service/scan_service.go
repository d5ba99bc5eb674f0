package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"scan-station/internal/domain"
	"scan-station/internal/scan"
)

// ScanMode selects between a single capture and a feeder batch.
type ScanMode string

const (
	ScanModeSingle ScanMode = "single"
	ScanModeFeeder ScanMode = "feeder"
)

// JobStatus is the lifecycle state of a scan job.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
	JobFailed    JobStatus = "failed"
)

// ScanJob is a snapshot of one background scan.
type ScanJob struct {
	ID            string              `json:"id"`
	DeviceID      string              `json:"device_id"`
	DocumentID    string              `json:"document_id"`
	Mode          ScanMode            `json:"mode"`
	Status        JobStatus           `json:"status"`
	Progress      domain.ScanProgress `json:"progress"`
	PagesCaptured int                 `json:"pages_captured"`
	Error         string              `json:"error,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
}

type scanJob struct {
	ScanJob
	cancel context.CancelFunc
}

// ScanService runs scans as background jobs. One scan per device at a
// time; a second start against a busy device is rejected.
type ScanService struct {
	sessions *scan.SessionDriver
	docs     *DocumentService
	enhance  *EnhanceService
	ocr      *OCRService
	logger   domain.Logger

	mu   sync.Mutex
	jobs map[string]*scanJob
	busy map[string]string
}

// NewScanService creates the scan job runner.
func NewScanService(sessions *scan.SessionDriver, docs *DocumentService, enhance *EnhanceService, ocr *OCRService, logger domain.Logger) *ScanService {
	return &ScanService{
		sessions: sessions,
		docs:     docs,
		enhance:  enhance,
		ocr:      ocr,
		logger:   logger,
		jobs:     make(map[string]*scanJob),
		busy:     make(map[string]string),
	}
}

// StartScan launches a scan into the given document and returns the job
// snapshot immediately. The scan outlives the request; progress is polled
// through GetJob.
func (s *ScanService) StartScan(deviceID, documentID string, settings domain.ScanSettings, mode ScanMode) (ScanJob, error) {
	if mode != ScanModeSingle && mode != ScanModeFeeder {
		return ScanJob{}, domain.NewValidationError("mode", "mode must be single or feeder")
	}
	if _, err := s.docs.Get(documentID); err != nil {
		return ScanJob{}, err
	}

	s.mu.Lock()
	if jobID, ok := s.busy[deviceID]; ok {
		s.mu.Unlock()
		return ScanJob{}, fmt.Errorf("%w: job %s", domain.ErrDeviceBusy, jobID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &scanJob{
		ScanJob: ScanJob{
			ID:         uuid.New().String(),
			DeviceID:   deviceID,
			DocumentID: documentID,
			Mode:       mode,
			Status:     JobRunning,
			StartedAt:  time.Now().UTC(),
		},
		cancel: cancel,
	}
	s.jobs[job.ID] = job
	s.busy[deviceID] = job.ID
	s.mu.Unlock()

	s.logger.Info("scan started", "job", job.ID, "device", deviceID, "document", documentID, "mode", string(mode))
	go s.run(ctx, job, settings)
	return job.ScanJob, nil
}

// GetJob returns a snapshot of the job.
func (s *ScanService) GetJob(id string) (ScanJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ScanJob{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return job.ScanJob, nil
}

// ListJobs returns snapshots of every known job.
func (s *ScanService) ListJobs() []ScanJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScanJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.ScanJob)
	}
	return out
}

// CancelJob requests cancellation of a running job. Pages already captured
// stay in the document. Cancelling a finished job is a no-op.
func (s *ScanService) CancelJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	if job.Status == JobRunning {
		job.cancel()
	}
	return nil
}

func (s *ScanService) run(ctx context.Context, job *scanJob, settings domain.ScanSettings) {
	defer job.cancel()

	sink := domain.ProgressFunc(func(p domain.ScanProgress) {
		s.mu.Lock()
		job.Progress = p
		s.mu.Unlock()
	})

	var pages []*domain.Page
	var err error
	switch job.Mode {
	case ScanModeSingle:
		var page *domain.Page
		page, err = s.sessions.ScanSingle(ctx, job.DeviceID, settings, sink)
		if page != nil {
			pages = append(pages, page)
		}
	case ScanModeFeeder:
		pages, err = s.sessions.ScanMany(ctx, job.DeviceID, settings, sink)
	}

	cancelled := ctx.Err() != nil

	if len(pages) > 0 {
		// Pages captured before a cancel still get their post-processing.
		s.postProcess(context.WithoutCancel(ctx), pages, settings)
		if appendErr := s.docs.AppendPages(job.DocumentID, pages); appendErr != nil {
			s.logger.Error("could not append scanned pages", appendErr, "job", job.ID, "document", job.DocumentID)
			if err == nil {
				err = appendErr
			}
		}
	}

	now := time.Now().UTC()
	s.mu.Lock()
	job.PagesCaptured = len(pages)
	job.FinishedAt = &now
	switch {
	case err != nil && !cancelled:
		job.Status = JobFailed
		job.Error = err.Error()
	case cancelled:
		job.Status = JobCancelled
	default:
		job.Status = JobCompleted
	}
	delete(s.busy, job.DeviceID)
	s.mu.Unlock()

	if err != nil && !cancelled {
		s.logger.Error("scan failed", err, "job", job.ID, "pages_captured", len(pages))
	} else {
		s.logger.Info("scan finished", "job", job.ID, "status", string(job.Status), "pages", len(pages))
	}
}

// postProcess runs the configured cleanup on freshly captured pages.
// Thumbnails are always generated; enhancement and OCR follow the settings.
// Failures here degrade the page, never the job.
func (s *ScanService) postProcess(ctx context.Context, pages []*domain.Page, settings domain.ScanSettings) {
	for _, page := range pages {
		if settings.AutoEnhance {
			if err := s.enhance.AutoEnhance(page); err != nil {
				s.logger.Warn("auto enhance failed", "page", page.ID, "error", err)
			}
		}
		if err := s.enhance.Thumbnail(page); err != nil {
			s.logger.Warn("thumbnail failed", "page", page.ID, "error", err)
		}
		if settings.AutoOCR && s.ocr != nil {
			if err := s.ocr.RecognizePage(ctx, page, settings.OCRLanguage, false); err != nil {
				s.logger.Warn("auto ocr failed", "page", page.ID, "error", err)
			}
		}
	}
}
