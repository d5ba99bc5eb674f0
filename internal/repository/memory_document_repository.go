package repository

import (
	"fmt"
	"sort"
	"sync"

	"scan-station/internal/domain"
)

// MemoryDocumentRepository keeps documents in process memory. Page image
// data never leaves the host unless an export explicitly uploads it.
type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document
}

// NewMemoryDocumentRepository creates an empty in-memory store.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[string]*domain.Document)}
}

// Create stores a new document.
func (r *MemoryDocumentRepository) Create(doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	r.docs[doc.ID] = doc
	return nil
}

// GetByID returns the stored document.
func (r *MemoryDocumentRepository) GetByID(id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return doc, nil
}

// List returns all documents ordered by creation time, newest first.
func (r *MemoryDocumentRepository) List() ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the document.
func (r *MemoryDocumentRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	delete(r.docs, id)
	return nil
}
