package domain

import "context"

// DocumentRepository defines storage operations for scan documents.
type DocumentRepository interface {
	Create(doc *Document) error
	GetByID(id string) (*Document, error)
	List() ([]*Document, error)
	Delete(id string) error
}

// PageEmbedding associates a page's OCR text with its embedding vector.
type PageEmbedding struct {
	ID         string    `json:"id,omitempty"`
	DocumentID string    `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

// PageMatch is a semantic search hit over OCR'd page text.
type PageMatch struct {
	DocumentID string  `json:"document_id"`
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// VectorRepository persists and queries page embeddings.
type VectorRepository interface {
	SaveEmbedding(ctx context.Context, emb *PageEmbedding) error
	DeleteByDocumentID(ctx context.Context, documentID string) error
	MatchPages(ctx context.Context, embedding []float32, limit int) ([]PageMatch, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetAPIKey() string
	GetDriverName() string
	GetProfilesPath() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetStorageBucket() string
	GetS3Bucket() string
	GetS3Region() string
	GetVertexProjectID() string
	GetVertexLocation() string
}
