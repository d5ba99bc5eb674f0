package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"scan-station/internal/domain"
)

const (
	embeddingModel = "text-embedding-004"

	// Vertex embedding calls are rate limited; cap in-flight requests.
	indexEmbedWorkers = 4
)

// SearchService indexes OCR'd page text as embeddings and answers semantic
// queries over them.
type SearchService struct {
	vectorRepo domain.VectorRepository
	projectID  string
	location   string
	logger     domain.Logger
	httpClient *http.Client
}

// NewSearchService creates the semantic search service.
func NewSearchService(vectorRepo domain.VectorRepository, projectID, location string, logger domain.Logger) *SearchService {
	return &SearchService{
		vectorRepo: vectorRepo,
		projectID:  projectID,
		location:   location,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// IndexDocument embeds every OCR'd page of the document and stores the
// vectors. Pages without OCR text are skipped. Prior vectors for the
// document are replaced.
func (s *SearchService) IndexDocument(ctx context.Context, doc *domain.Document) (int, error) {
	if err := s.vectorRepo.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("clear old embeddings: %w", err)
	}

	sem := make(chan struct{}, indexEmbedWorkers)
	g, gctx := errgroup.WithContext(ctx)
	indexed := 0
	for _, page := range doc.Pages {
		if page.OCR == nil || page.OCR.Text == "" {
			continue
		}
		page := page
		indexed++
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			embedding, err := s.generateEmbedding(gctx, page.OCR.Text)
			if err != nil {
				return fmt.Errorf("embed page %d: %w", page.PageNumber, err)
			}
			emb := &domain.PageEmbedding{
				DocumentID: doc.ID,
				PageNumber: page.PageNumber,
				Text:       page.OCR.Text,
				Embedding:  embedding,
			}
			if err := s.vectorRepo.SaveEmbedding(gctx, emb); err != nil {
				return fmt.Errorf("save embedding for page %d: %w", page.PageNumber, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	s.logger.Info("document indexed", "document", doc.ID, "pages_indexed", indexed)
	return indexed, nil
}

// RemoveDocument drops every stored vector for the document.
func (s *SearchService) RemoveDocument(ctx context.Context, documentID string) error {
	return s.vectorRepo.DeleteByDocumentID(ctx, documentID)
}

// Search embeds the query and returns the closest pages across all indexed
// documents.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.PageMatch, error) {
	if query == "" {
		return nil, domain.NewValidationError("query", "query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	embedding, err := s.generateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.vectorRepo.MatchPages(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("match pages: %w", err)
	}
	return matches, nil
}

// generateEmbedding calls the Vertex AI prediction endpoint directly; the
// genai SDK has no embedding surface for this model.
func (s *SearchService) generateEmbedding(ctx context.Context, text string) ([]float32, error) {
	url := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		s.location, s.projectID, s.location, embeddingModel,
	)

	requestBody := map[string]interface{}{
		"instances": []map[string]interface{}{
			{"content": text},
		},
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to get default credentials: %w", err)
	}
	token, err := creds.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status: %d", resp.StatusCode)
	}

	var result struct {
		Predictions []struct {
			Embeddings struct {
				Values []float32 `json:"values"`
			} `json:"embeddings"`
		} `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Predictions) == 0 || len(result.Predictions[0].Embeddings.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Predictions[0].Embeddings.Values, nil
}
