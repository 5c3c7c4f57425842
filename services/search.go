package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/voxnotes/server/models"
)

const (
	defaultTopK      = 5
	defaultThreshold = 0.5
)

// SearchService answers semantic queries: validate, embed the query text,
// run the similarity query, shape the response. Read-only and safe to call
// concurrently.
type SearchService struct {
	embedder EmbeddingProvider
	vectors  VectorStore
	budget   time.Duration
}

func NewSearchService(embedder EmbeddingProvider, vectors VectorStore) *SearchService {
	return &SearchService{
		embedder: embedder,
		vectors:  vectors,
		budget:   opBudget,
	}
}

func (s *SearchService) Search(ctx context.Context, req models.SemanticSearchRequest) (*models.SemanticSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}

	topK := defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrValidation, topK)
	}

	threshold := defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0,1], got %g", ErrValidation, threshold)
	}

	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("SEARCH: embedding query failed: %v", err)
		return nil, classify(ErrEmbedding, err)
	}

	results, err := s.vectors.QuerySimilar(ctx, vector, threshold, topK)
	if err != nil {
		log.Printf("SEARCH: similarity query failed: %v", err)
		return nil, err
	}

	log.Printf("SEARCH: %d results for query %q (topK=%d threshold=%g)", len(results), query, topK, threshold)
	return &models.SemanticSearchResponse{
		Results: results,
		Query:   req.Query,
		Count:   len(results),
	}, nil
}
