package models

type IngestEmbeddingResponse struct {
	Success            bool   `json:"success"`
	NoteID             string `json:"noteId"`
	EmbeddingDimension int    `json:"embeddingDimension"`
}

type SemanticSearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
	Count   int            `json:"count"`
}

type NoteResponse struct {
	Note Note `json:"note"`
}

type ListNotesResponse struct {
	Notes []Note `json:"notes"`
	Count int    `json:"count"`
}

type DeleteNoteResponse struct {
	Success bool `json:"success"`
}

type ListParsersResponse struct {
	Parsers []Parser `json:"parsers"`
}
