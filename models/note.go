package models

import "time"

// Note represents a single voice note. The transcript is populated by the
// transcription pipeline; the embedding derived from it lives in the vector
// store, keyed by the note ID, and is not carried on this struct.
type Note struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Transcript string    `json:"transcript" db:"transcript"`
	Folder     string    `json:"folder" db:"folder"`
	Parser     string    `json:"parser" db:"parser"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// NotePatch holds the fields that may be changed by a partial update.
// Nil means "leave unchanged".
type NotePatch struct {
	Title      *string `json:"title"`
	Transcript *string `json:"transcript"`
	Folder     *string `json:"folder"`
	Parser     *string `json:"parser"`
}

// Empty reports whether the patch would change nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Transcript == nil && p.Folder == nil && p.Parser == nil
}

// SearchResult is one ranked match from a similarity query. Score is cosine
// similarity, higher is more similar.
type SearchResult struct {
	NoteID     string  `json:"noteId"`
	Score      float64 `json:"score"`
	Title      string  `json:"title,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Folder     string  `json:"folder,omitempty"`
}

// Parser describes a transcript post-processing mode offered by the recorder UI.
type Parser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
