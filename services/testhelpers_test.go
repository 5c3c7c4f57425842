package services

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/voxnotes/server/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or every pooled conn gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestNoteStore(t *testing.T) (*SQLiteNoteStore, *sqlx.DB) {
	t.Helper()
	db := newTestDB(t)
	store, err := NewSQLiteNoteStore(db)
	require.NoError(t, err)
	return store, db
}

func createNote(t *testing.T, store *SQLiteNoteStore, transcript string) *models.Note {
	t.Helper()
	note, err := store.Create(context.Background(), models.CreateNoteRequest{
		Title:      "test note",
		Transcript: transcript,
	})
	require.NoError(t, err)
	return note
}

// fakeEmbedder returns a fixed vector for every input and records its calls.
type fakeEmbedder struct {
	vector    []float32
	err       error
	dimension int
	calls     []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Dimension() int {
	if f.dimension != 0 {
		return f.dimension
	}
	return len(f.vector)
}

func (f *fakeEmbedder) Model() string { return "fake-embed" }

func constantVector(dim int, value float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = value
	}
	return v
}

// fakeVectorStore records saves and query parameters.
type fakeVectorStore struct {
	saveErr  error
	queryErr error
	results  []models.SearchResult

	saved map[string][]float32

	lastThreshold float64
	lastLimit     int
	queryCalls    int
}

func (f *fakeVectorStore) SaveEmbedding(_ context.Context, noteID string, vector []float32) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = map[string][]float32{}
	}
	f.saved[noteID] = vector
	return nil
}

func (f *fakeVectorStore) QuerySimilar(_ context.Context, _ []float32, threshold float64, limit int) ([]models.SearchResult, error) {
	f.queryCalls++
	f.lastThreshold = threshold
	f.lastLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.results, nil
}
