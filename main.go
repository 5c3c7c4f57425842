package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/voxnotes/server/controller"
	"github.com/voxnotes/server/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
	_ "modernc.org/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	db, err := sqlx.Connect("sqlite", getenv("SQLITE_PATH", "voxnotes.db"))
	if err != nil {
		log.Fatalf("FATAL: Failed to open sqlite database: %v", err)
	}
	// sqlite is single-writer; one pooled connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	defer db.Close()

	noteStore, err := services.NewSQLiteNoteStore(db)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize note store: %v", err)
	}

	embedder, err := buildEmbedder(httpClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to create embedding provider: %v", err)
	}
	log.Printf("Embedding provider ready: %s (%d dimensions)", embedder.Model(), embedder.Dimension())

	vectors, closeVectors, err := buildVectorStore(db, noteStore, embedder.Dimension())
	if err != nil {
		log.Fatalf("FATAL: Failed to create vector store: %v", err)
	}
	defer closeVectors()

	audioActions, err := services.NewAudioActions(getenv("AUDIO_DIR", "audio"))
	if err != nil {
		log.Fatalf("FATAL: Failed to prepare audio directory: %v", err)
	}

	ingestionService := services.NewIngestionService(noteStore, embedder, vectors)
	searchService := services.NewSearchService(embedder, vectors)

	notesController := controller.NewNotesController(noteStore, audioActions)
	retrievalController := controller.NewRetrievalController(ingestionService, searchService)

	// Background janitor: sweep orphaned audio blobs once, then watch.
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	janitor := services.NewAudioJanitor(audioActions, noteStore)
	go func() {
		janitor.Sweep(janitorCtx)
		janitor.Watch(janitorCtx)
	}()

	router := gin.Default()

	// Permissive CORS for the recorder web client.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Voice Notes API",
			"version": "2.0.0",
		})
	})

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

	port := getenv("PORT", "8080")
	log.Printf("Voice notes backend starting on http://localhost:%s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// buildEmbedder selects the embedding provider from EMBED_PROVIDER.
func buildEmbedder(httpClient *http.Client) (services.EmbeddingProvider, error) {
	dimension := getenvInt("EMBED_DIMENSION", 768)

	switch getenv("EMBED_PROVIDER", "gemini") {
	case "ollama":
		return services.NewOllamaEmbedder(
			httpClient,
			os.Getenv("OLLAMA_URL"),
			os.Getenv("OLLAMA_EMBED_MODEL"),
			dimension,
		), nil
	default:
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		log.Println("Successfully connected to Google Gemini.")
		return services.NewGeminiEmbedder(geminiClient, os.Getenv("GEMINI_EMBED_MODEL"), dimension), nil
	}
}

// buildVectorStore selects the vector backend from VECTOR_STORE. The sqlite
// backend shares the note database; the Chroma backend needs a server.
func buildVectorStore(db *sqlx.DB, notes services.NoteStore, dimension int) (services.VectorStore, func(), error) {
	if getenv("VECTOR_STORE", "chroma") == "sqlite" {
		log.Println("Using embedded sqlite vector store.")
		return services.NewSQLiteVectorStore(db, dimension), func() {}, nil
	}

	opts := []chromago.ClientOption{}
	if url := os.Getenv("CHROMA_URL"); url != "" {
		opts = append(opts, chromago.WithBaseURL(url))
	}
	chromaClient, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}

	// Cosine space so distances convert directly to the similarity the
	// embedding models were trained for.
	collection, err := chromaClient.GetOrCreateCollection(
		context.Background(),
		getenv("CHROMA_COLLECTION", "voxnotes"),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
				chromago.NewStringAttribute("created_by", "voxnotes_server"),
			),
		),
	)
	if err != nil {
		closer()
		return nil, nil, err
	}
	log.Printf("Chroma collection ready.")

	return services.NewChromaVectorStore(collection, notes, dimension), closer, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
