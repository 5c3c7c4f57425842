package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// EmbeddingProvider generates a dense vector for a single piece of text.
// Implemented by provider-specific clients (Gemini, Ollama). Callers trim
// the input; providers reject blank text.
type EmbeddingProvider interface {
	// Embed returns exactly one vector for the given text. Errors wrap
	// ErrProvider when the upstream model returns no embedding, an empty
	// vector, or the call cannot complete.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension is the fixed output dimension of the configured model.
	Dimension() int

	// Model names the configured embedding model.
	Model() string
}

// GeminiEmbedder produces embeddings with the Gemini embedding API.
// text-embedding-004 outputs 768-dimension vectors.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(client *genai.Client, model string, dimension int) *GeminiEmbedder {
	if model == "" {
		model = "text-embedding-004"
	}
	if dimension == 0 {
		dimension = 768
	}
	return &GeminiEmbedder{client: client, model: model, dimension: dimension}
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrProvider)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed call: %v", ErrProvider, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no embedding", ErrProvider)
	}
	return resp.Embeddings[0].Values, nil
}

func (g *GeminiEmbedder) Dimension() int { return g.dimension }
func (g *GeminiEmbedder) Model() string  { return g.model }

// ollamaEmbedRequest structures the request to the Ollama embedding API.
type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaEmbedResponse parses the embedding from the Ollama API response.
type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder produces embeddings with a local Ollama instance.
// nomic-embed-text:v1.5 outputs 768-dimension vectors.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
	dimension  int
}

func NewOllamaEmbedder(client *http.Client, baseURL, model string, dimension int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text:v1.5"
	}
	if dimension == 0 {
		dimension = 768
	}
	return &OllamaEmbedder{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimension:  dimension,
	}
}

func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrProvider)
	}

	reqBody, err := json.Marshal(ollamaEmbedRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal ollama request: %v", ErrProvider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: create ollama http request: %v", ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call ollama embedding api: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("EMBEDDER: ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
		return nil, fmt.Errorf("%w: ollama api returned non-200 status %d", ErrProvider, resp.StatusCode)
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("%w: decode ollama response: %v", ErrProvider, err)
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: ollama returned empty embedding", ErrProvider)
	}
	return ollamaResp.Embedding, nil
}

func (o *OllamaEmbedder) Dimension() int { return o.dimension }
func (o *OllamaEmbedder) Model() string  { return o.model }
