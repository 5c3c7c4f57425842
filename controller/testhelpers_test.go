package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/voxnotes/server/models"
	"github.com/voxnotes/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubEmbedder hands back a fixed vector, or an error.
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}
func (s *stubEmbedder) Dimension() int { return len(s.vector) }
func (s *stubEmbedder) Model() string  { return "stub-embed" }

type testEnv struct {
	router *gin.Engine
	notes  *services.SQLiteNoteStore
	db     *sqlx.DB
	audio  *services.AudioActions
}

// newTestEnv wires the full router against in-memory sqlite for both notes
// and vectors, with a stub embedding provider.
func newTestEnv(t *testing.T, embedder services.EmbeddingProvider) *testEnv {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or every pooled conn gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	notes, err := services.NewSQLiteNoteStore(db)
	require.NoError(t, err)

	vectors := services.NewSQLiteVectorStore(db, embedder.Dimension())
	audio, err := services.NewAudioActions(t.TempDir())
	require.NoError(t, err)

	notesController := NewNotesController(notes, audio)
	retrievalController := NewRetrievalController(
		services.NewIngestionService(notes, embedder, vectors),
		services.NewSearchService(embedder, vectors),
	)

	router := gin.New()
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/notes", notesController.CreateNote)
		apiV1.GET("/notes", notesController.ListNotes)
		apiV1.GET("/notes/:id", notesController.GetNote)
		apiV1.PATCH("/notes/:id", notesController.UpdateNote)
		apiV1.DELETE("/notes/:id", notesController.DeleteNote)
		apiV1.POST("/notes/embedding", retrievalController.IngestEmbedding)
		apiV1.POST("/search", retrievalController.SemanticSearch)
		apiV1.GET("/parsers", notesController.ListParsers)
	}

	return &testEnv{router: router, notes: notes, db: db, audio: audio}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *testEnv) createNote(t *testing.T, transcript string) models.Note {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/notes", models.CreateNoteRequest{
		Title:      "test",
		Transcript: transcript,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[models.NoteResponse](t, rec).Note
}
