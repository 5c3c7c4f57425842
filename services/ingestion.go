package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/voxnotes/server/models"
)

const (
	// minTranscriptChars is the shortest transcript worth embedding.
	minTranscriptChars = 10

	// maxEmbedChars bounds the text sent to the embedding model. Longer
	// transcripts are windowed to their first chunk at a natural boundary.
	maxEmbedChars = 6000

	// opBudget bounds each ingestion or search invocation end to end.
	opBudget = 30 * time.Second
)

// IngestionService computes and persists the embedding for a note's
// transcript: fetch, validate, embed, persist. It holds no state between
// invocations; re-ingestion overwrites, so retries are the caller's call.
type IngestionService struct {
	notes    NoteStore
	embedder EmbeddingProvider
	vectors  VectorStore
	budget   time.Duration
}

func NewIngestionService(notes NoteStore, embedder EmbeddingProvider, vectors VectorStore) *IngestionService {
	return &IngestionService{
		notes:    notes,
		embedder: embedder,
		vectors:  vectors,
		budget:   opBudget,
	}
}

func (s *IngestionService) IngestNote(ctx context.Context, noteID string) (*models.IngestEmbeddingResponse, error) {
	noteID = strings.TrimSpace(noteID)
	if noteID == "" {
		return nil, fmt.Errorf("%w: noteId is required", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		log.Printf("INGEST: fetch note %s failed: %v", noteID, err)
		return nil, err
	}

	transcript := strings.TrimSpace(note.Transcript)
	if utf8.RuneCountInString(transcript) < minTranscriptChars {
		return nil, fmt.Errorf("%w: transcript of note %s is shorter than %d characters", ErrValidation, noteID, minTranscriptChars)
	}

	vector, err := s.embedder.Embed(ctx, windowTranscript(transcript))
	if err != nil {
		log.Printf("INGEST: embedding note %s failed: %v", noteID, err)
		return nil, classify(ErrEmbedding, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty vector for note %s", ErrEmbedding, noteID)
	}
	if dim := s.embedder.Dimension(); dim > 0 && len(vector) != dim {
		return nil, fmt.Errorf("%w: provider returned %d dimensions, model %s expects %d", ErrEmbedding, len(vector), s.embedder.Model(), dim)
	}

	if err := s.vectors.SaveEmbedding(ctx, noteID, vector); err != nil {
		log.Printf("INGEST: persisting embedding for note %s failed: %v", noteID, err)
		return nil, err
	}

	log.Printf("INGEST: note %s embedded, dimension %d", noteID, len(vector))
	return &models.IngestEmbeddingResponse{
		Success:            true,
		NoteID:             noteID,
		EmbeddingDimension: len(vector),
	}, nil
}

// windowTranscript trims an overlong transcript to the embedding model's
// input budget, cutting at a natural boundary where possible.
func windowTranscript(text string) string {
	if len(text) <= maxEmbedChars {
		return text
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(maxEmbedChars),
		textsplitter.WithChunkOverlap(0),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil || len(chunks) == 0 {
		log.Printf("INGEST: transcript windowing fell back to hard cut: %v", err)
		cut := text[:maxEmbedChars]
		for !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		return cut
	}
	return chunks[0]
}
