package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxnotes/server/models"
	"github.com/voxnotes/server/services"
)

// RetrievalController handles the semantic retrieval endpoints: embedding
// ingestion and semantic search.
type RetrievalController struct {
	ingestion *services.IngestionService
	search    *services.SearchService
}

func NewRetrievalController(ingestion *services.IngestionService, search *services.SearchService) *RetrievalController {
	return &RetrievalController{ingestion: ingestion, search: search}
}

// IngestEmbedding is the handler for POST /api/v1/notes/embedding.
func (c *RetrievalController) IngestEmbedding(ctx *gin.Context) {
	var req models.IngestEmbeddingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.ingestion.IngestNote(ctx.Request.Context(), req.NoteID)
	if err != nil {
		log.Printf("CONTROLLER: ingest embedding for note %q failed: %v", req.NoteID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SemanticSearch is the handler for POST /api/v1/search.
func (c *RetrievalController) SemanticSearch(ctx *gin.Context) {
	var req models.SemanticSearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.search.Search(ctx.Request.Context(), req)
	if err != nil {
		log.Printf("CONTROLLER: semantic search for %q failed: %v", req.Query, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
