package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxnotes/server/models"
	"github.com/voxnotes/server/services"
)

// NotesController handles the note CRUD endpoints and the parser listing.
type NotesController struct {
	notes services.NoteStore
	audio *services.AudioActions
}

func NewNotesController(notes services.NoteStore, audio *services.AudioActions) *NotesController {
	return &NotesController{notes: notes, audio: audio}
}

// parsers are the transcript post-processing modes the recorder offers.
var parsers = []models.Parser{
	{ID: "raw", Name: "Raw", Description: "Verbatim transcript"},
	{ID: "summary", Name: "Summary", Description: "Condensed overview of the recording"},
	{ID: "bullets", Name: "Bullet Points", Description: "Key points as a list"},
	{ID: "actions", Name: "Action Items", Description: "Tasks extracted from the recording"},
}

// CreateNote is the handler for POST /api/v1/notes.
func (c *NotesController) CreateNote(ctx *gin.Context) {
	var req models.CreateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	note, err := c.notes.Create(ctx.Request.Context(), req)
	if err != nil {
		log.Printf("CONTROLLER: create note failed: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, models.NoteResponse{Note: *note})
}

// ListNotes is the handler for GET /api/v1/notes.
func (c *NotesController) ListNotes(ctx *gin.Context) {
	notes, err := c.notes.List(ctx.Request.Context())
	if err != nil {
		log.Printf("CONTROLLER: list notes failed: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.ListNotesResponse{Notes: notes, Count: len(notes)})
}

// GetNote is the handler for GET /api/v1/notes/:id.
func (c *NotesController) GetNote(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing note id"})
		return
	}

	note, err := c.notes.Get(ctx.Request.Context(), id)
	if err != nil {
		log.Printf("CONTROLLER: get note %s failed: %v", id, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NoteResponse{Note: *note})
}

// UpdateNote is the handler for PATCH /api/v1/notes/:id. Only the fields
// present in the body are changed; the embedding is NOT re-computed, the
// caller re-ingests explicitly when the transcript changed.
func (c *NotesController) UpdateNote(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing note id"})
		return
	}

	var patch models.NotePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	note, err := c.notes.Update(ctx.Request.Context(), id, patch)
	if err != nil {
		log.Printf("CONTROLLER: update note %s failed: %v", id, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NoteResponse{Note: *note})
}

// DeleteNote is the handler for DELETE /api/v1/notes/:id. Audio blob
// candidates for every known extension are removed best-effort after the
// record itself; a blob removal failure never fails the request.
func (c *NotesController) DeleteNote(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing note id"})
		return
	}

	// Deleting an already-absent note succeeds; the blob sweep below still
	// runs so stray recordings get cleaned up either way.
	if err := c.notes.Delete(ctx.Request.Context(), id); err != nil && !errors.Is(err, services.ErrNotFound) {
		log.Printf("CONTROLLER: delete note %s failed: %v", id, err)
		respondError(ctx, err)
		return
	}
	c.audio.RemoveCandidates(id)

	ctx.JSON(http.StatusOK, models.DeleteNoteResponse{Success: true})
}

// ListParsers is the handler for GET /api/v1/parsers.
func (c *NotesController) ListParsers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.ListParsersResponse{Parsers: parsers})
}
