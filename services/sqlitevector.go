package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/voxnotes/server/models"
)

// SQLiteVectorStore keeps embeddings in a text-encoded vector column on the
// notes table ("[0.1,0.2,...]") and computes cosine similarity in process.
// It trades query speed for zero extra infrastructure, which is plenty for a
// personal note collection.
type SQLiteVectorStore struct {
	db        *sqlx.DB
	dimension int
}

func NewSQLiteVectorStore(db *sqlx.DB, dimension int) *SQLiteVectorStore {
	return &SQLiteVectorStore{db: db, dimension: dimension}
}

func (s *SQLiteVectorStore) SaveEmbedding(ctx context.Context, noteID string, vector []float32) error {
	if s.dimension > 0 && len(vector) != s.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, store expects %d", ErrPersistence, len(vector), s.dimension)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET embedding = ? WHERE id = ?`,
		models.EncodeVector(vector), noteID)
	if err != nil {
		return classify(ErrPersistence, fmt.Errorf("save embedding for note %s: %w", noteID, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(ErrPersistence, fmt.Errorf("save embedding for note %s: %w", noteID, err))
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, noteID)
	}
	return nil
}

type embeddedNoteRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Transcript string `db:"transcript"`
	Folder     string `db:"folder"`
	Embedding  string `db:"embedding"`
}

func (s *SQLiteVectorStore) QuerySimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error) {
	rows := []embeddedNoteRow{}
	// Ordering by id keeps ties stable across the stable sort below.
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, transcript, folder, embedding
		 FROM notes WHERE embedding IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("load embeddings: %w", err))
	}

	matches := make([]models.SearchResult, 0, len(rows))
	for _, row := range rows {
		stored, err := models.ParseVector(row.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding for note %s: %v", ErrPersistence, row.ID, err)
		}
		if len(stored) != len(vector) {
			log.Printf("VECTORSTORE: skipping note %s, embedding dimension %d != query dimension %d", row.ID, len(stored), len(vector))
			continue
		}
		score := cosineSimilarity(vector, stored)
		if score < threshold {
			continue
		}
		matches = append(matches, models.SearchResult{
			NoteID:     row.ID,
			Score:      score,
			Title:      row.Title,
			Transcript: row.Transcript,
			Folder:     row.Folder,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// cosineSimilarity accumulates in float64 to keep precision over 768 terms.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
