package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"scan-station/internal/domain"
)

// SupabaseVectorRepository stores page embeddings in a pgvector-enabled
// Supabase table and runs similarity search through the
// match_page_embeddings RPC.
type SupabaseVectorRepository struct {
	supabaseClient *SupabaseClient
	logger         domain.Logger
}

// NewSupabaseVectorRepository creates the vector repository.
func NewSupabaseVectorRepository(supabaseClient *SupabaseClient, logger domain.Logger) *SupabaseVectorRepository {
	return &SupabaseVectorRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// SaveEmbedding upserts one page's embedding. Re-indexing the same page
// replaces the previous row instead of violating the unique constraint on
// (document_id, page_number).
func (r *SupabaseVectorRepository) SaveEmbedding(ctx context.Context, emb *domain.PageEmbedding) error {
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"document_id": emb.DocumentID,
		"page_number": emb.PageNumber,
		"text":        emb.Text,
		"embedding":   pgvector.NewVector(emb.Embedding),
		"created_at":  time.Now(),
	}

	resp, _, err := client.From("page_embeddings").Insert(data, true, "document_id,page_number", "id", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}

	var result []struct {
		ID string `json:"id"`
	}
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &result); err == nil && len(result) > 0 {
			emb.ID = result[0].ID
		}
	}
	return nil
}

// DeleteByDocumentID drops every embedding row for the document.
func (r *SupabaseVectorRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From("page_embeddings").Delete("", "").Eq("document_id", documentID).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete embeddings: %w", err)
	}
	return nil
}

// MatchPages returns the pages closest to the query embedding across all
// documents.
func (r *SupabaseVectorRepository) MatchPages(ctx context.Context, embedding []float32, limit int) ([]domain.PageMatch, error) {
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	params := map[string]interface{}{
		"query_embedding": pgvector.NewVector(embedding),
		"match_threshold": 0.3,
		"match_count":     limit,
	}

	// Rpc returns the raw response body as a string.
	resp := client.Rpc("match_page_embeddings", "", params)
	if resp == "" {
		return nil, fmt.Errorf("rpc returned empty response")
	}

	var results []struct {
		DocumentID string  `json:"document_id"`
		PageNumber int     `json:"page_number"`
		Text       string  `json:"text"`
		Similarity float64 `json:"similarity"`
	}
	if err := json.Unmarshal([]byte(resp), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}

	matches := make([]domain.PageMatch, len(results))
	for i, res := range results {
		matches[i] = domain.PageMatch{
			DocumentID: res.DocumentID,
			PageNumber: res.PageNumber,
			Text:       res.Text,
			Similarity: res.Similarity,
		}
	}
	return matches, nil
}
