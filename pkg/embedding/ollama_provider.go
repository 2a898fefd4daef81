package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
)

type OllamaProvider struct {
	BaseURL string
	Model   string
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewOllamaProvider(baseURL, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
	}
}

func (p *OllamaProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	ollamaReq := ollamaEmbeddingRequest{
		Model:  p.Model,
		Prompt: text,
	}

	reqJson, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/embeddings", p.BaseURL),
		bytes.NewBuffer(reqJson),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from ollama response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var ollamaRes ollamaEmbeddingResponse
	err = json.Unmarshal(resByte, &ollamaRes)
	if err != nil {
		return nil, err
	}

	values := make([]float32, len(ollamaRes.Embedding))
	for i, v := range ollamaRes.Embedding {
		values[i] = float32(v)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(values),
		},
	}, nil
}

// normalizeVector scales the vector to unit length so that dot product
// equals cosine similarity.
func normalizeVector(values []float32) []float32 {
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return values
	}

	normalized := make([]float32, len(values))
	for i, v := range values {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}
