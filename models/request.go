package models

type IngestEmbeddingRequest struct {
	NoteID string `json:"noteId"`
}

// SemanticSearchRequest uses pointers for the tuning knobs so that an omitted
// field can be told apart from an explicit zero and given its default.
type SemanticSearchRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"topK,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type CreateNoteRequest struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	Folder     string `json:"folder"`
	Parser     string `json:"parser"`
}
