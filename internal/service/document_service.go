package service

import (
	"fmt"
	"sync"

	"scan-station/internal/domain"
)

// DocumentService owns document lifecycle and page mutations. All page
// mutations go through one mutex so concurrent scan jobs and API calls
// cannot interleave a reorder with an append.
type DocumentService struct {
	repo   domain.DocumentRepository
	logger domain.Logger

	mu sync.Mutex
}

// NewDocumentService creates a document service.
func NewDocumentService(repo domain.DocumentRepository, logger domain.Logger) *DocumentService {
	return &DocumentService{repo: repo, logger: logger}
}

// Create makes a new empty document.
func (s *DocumentService) Create(name string) (*domain.Document, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "document name is required")
	}
	doc := domain.NewDocument(name)
	if err := s.repo.Create(doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.logger.Info("document created", "document", doc.ID, "name", name)
	return doc, nil
}

// Save stores an already-built document, such as one produced by a PDF
// import.
func (s *DocumentService) Save(doc *domain.Document) error {
	if err := s.repo.Create(doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// List returns every stored document.
func (s *DocumentService) List() ([]*domain.Document, error) {
	return s.repo.List()
}

// Get returns the document by id.
func (s *DocumentService) Get(id string) (*domain.Document, error) {
	return s.repo.GetByID(id)
}

// Delete removes a document and its pages.
func (s *DocumentService) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "document", id)
	return nil
}

// AppendPages adds captured pages to the end of the document.
func (s *DocumentService) AppendPages(documentID string, pages []*domain.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return err
	}
	for _, p := range pages {
		doc.AppendPage(p)
	}
	return nil
}

// ReorderPages moves the page at position from to position to. Both are
// zero-based; out-of-range positions leave the document untouched.
func (s *DocumentService) ReorderPages(documentID string, from, to int) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	doc.Reorder(from, to)
	return doc, nil
}

// RemovePage deletes one page and renumbers the rest.
func (s *DocumentService) RemovePage(documentID, pageID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc.PageByID(pageID) == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPageNotFound, pageID)
	}
	doc.RemovePage(pageID)
	return doc, nil
}

// RotatePage adds degrees to the page's logical rotation.
func (s *DocumentService) RotatePage(documentID, pageID string, degrees int) (*domain.Page, error) {
	if degrees%90 != 0 {
		return nil, domain.NewValidationError("degrees", "rotation must be a multiple of 90")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	page := doc.PageByID(pageID)
	if page == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPageNotFound, pageID)
	}
	page.Rotate(degrees)
	return page, nil
}

// GetPage returns one page of a document.
func (s *DocumentService) GetPage(documentID, pageID string) (*domain.Page, error) {
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	page := doc.PageByID(pageID)
	if page == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPageNotFound, pageID)
	}
	return page, nil
}

// ClearPages removes every page, keeping the document itself.
func (s *DocumentService) ClearPages(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.repo.GetByID(documentID)
	if err != nil {
		return err
	}
	doc.Clear()
	s.logger.Info("document cleared", "document", documentID)
	return nil
}
