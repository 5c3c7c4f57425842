package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/voxnotes/server/models"
)

// VectorStore persists note embeddings and answers similarity queries.
// Any backend satisfying these two contracts is substitutable; the server
// ships a Chroma collection and an embedded sqlite implementation.
type VectorStore interface {
	// SaveEmbedding overwrites the embedding for the given note. It fails
	// with ErrNotFound when the note does not exist and ErrPersistence on
	// any storage failure. No other note fields are touched.
	SaveEmbedding(ctx context.Context, noteID string, vector []float32) error

	// QuerySimilar returns matches with cosine similarity >= threshold,
	// ordered by similarity descending, truncated to limit. An empty result
	// set is not an error.
	QuerySimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error)
}

// ChromaVectorStore keeps embeddings in a Chroma collection created with
// hnsw:space=cosine, so reported distances convert to similarity as 1-d.
// The note's transcript and grouping metadata are written alongside the
// vector so query results can project them without a second lookup.
type ChromaVectorStore struct {
	collection chromago.Collection
	notes      NoteStore
	dimension  int
}

func NewChromaVectorStore(collection chromago.Collection, notes NoteStore, dimension int) *ChromaVectorStore {
	return &ChromaVectorStore{collection: collection, notes: notes, dimension: dimension}
}

func (s *ChromaVectorStore) SaveEmbedding(ctx context.Context, noteID string, vector []float32) error {
	if s.dimension > 0 && len(vector) != s.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, store expects %d", ErrPersistence, len(vector), s.dimension)
	}

	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return err
	}

	embedding := embeddings.NewEmbeddingFromFloat32(vector)
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("title", note.Title),
		chromago.NewStringAttribute("folder", note.Folder),
	)

	err = s.collection.Upsert(ctx,
		chromago.WithIDs(chromago.DocumentID(noteID)),
		chromago.WithTexts(note.Transcript),
		chromago.WithEmbeddings(embedding),
		chromago.WithMetadatas(metadata),
	)
	if err != nil {
		return classify(ErrPersistence, fmt.Errorf("upsert embedding for note %s: %w", noteID, err))
	}
	return nil
}

func (s *ChromaVectorStore) QuerySimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error) {
	embedding := embeddings.NewEmbeddingFromFloat32(vector)

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(limit),
	)
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("query chroma collection: %w", err))
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	metaGroups := results.GetMetadatasGroups()
	distGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 {
		return []models.SearchResult{}, nil
	}

	matches := make([]models.SearchResult, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		if len(distGroups) == 0 || len(distGroups[0]) <= i {
			return nil, fmt.Errorf("%w: chroma response missing distances", ErrPersistence)
		}
		// Cosine distance to similarity; Chroma already ranks ascending
		// by distance so the order carries over unchanged.
		score := 1 - float64(distGroups[0][i])
		if score < threshold {
			continue
		}

		result := models.SearchResult{
			NoteID: string(id),
			Score:  score,
		}
		if len(docGroups) > 0 && len(docGroups[0]) > i {
			result.Transcript = docGroups[0][i].ContentString()
		}
		if len(metaGroups) > 0 && len(metaGroups[0]) > i && metaGroups[0][i] != nil {
			// DocumentMetadata has no map accessor; round-trip through JSON.
			jsonBytes, err := json.Marshal(metaGroups[0][i])
			if err == nil {
				var metaMap map[string]any
				if err := json.Unmarshal(jsonBytes, &metaMap); err == nil {
					if title, ok := metaMap["title"].(string); ok {
						result.Title = title
					}
					if folder, ok := metaMap["folder"].(string); ok {
						result.Folder = folder
					}
				}
			} else {
				log.Printf("VECTORSTORE: could not decode metadata for note %s: %v", id, err)
			}
		}
		matches = append(matches, result)
	}
	return matches, nil
}
