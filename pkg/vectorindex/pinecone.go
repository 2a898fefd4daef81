package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PineconeIndex talks to a Pinecone serverless index over its REST API.
// Vector ids follow the "<paperId>_<chunkIndex>" convention so chunks can
// be recovered even when metadata is missing.
type PineconeIndex struct {
	Host   string
	ApiKey string
	Client *http.Client
}

var _ Index = &PineconeIndex{}

func NewPineconeIndex(host, apiKey string) *PineconeIndex {
	return &PineconeIndex{
		Host:   strings.TrimRight(host, "/"),
		ApiKey: apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pineconeVector struct {
	Id       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type pineconeUpsertRequest struct {
	Vectors []pineconeVector `json:"vectors"`
}

type pineconeQueryRequest struct {
	Vector          []float32              `json:"vector"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
	TopK            int                    `json:"topK"`
	IncludeMetadata bool                   `json:"includeMetadata"`
}

// pineconeQueryResponse keeps matches loosely typed. The wire shape has
// drifted across API versions, so each match is normalized field by field
// instead of trusting a fixed struct.
type pineconeQueryResponse struct {
	Matches []map[string]interface{} `json:"matches"`
}

type pineconeDeleteRequest struct {
	Ids []string `json:"ids"`
}

func (p *PineconeIndex) Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	vectors := make([]pineconeVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = pineconeVector{
			Id:     fmt.Sprintf("%s_%d", paperId, i),
			Values: embeddings[i],
			Metadata: map[string]interface{}{
				"organization_id": organizationId.String(),
				"paper_id":        paperId.String(),
				"title":           title,
				"chunk_index":     i,
				"text":            chunk,
				"file_path":       filePath,
			},
		}
	}

	return p.post(ctx, "/vectors/upsert", pineconeUpsertRequest{Vectors: vectors}, nil)
}

func (p *PineconeIndex) Search(ctx context.Context, embedding []float32, organizationId uuid.UUID, topK int) ([]Match, error) {
	req := pineconeQueryRequest{
		Vector:          embedding,
		Filter:          map[string]interface{}{"organization_id": organizationId.String()},
		TopK:            topK,
		IncludeMetadata: true,
	}

	var res pineconeQueryResponse
	if err := p.post(ctx, "/query", req, &res); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(res.Matches))
	for _, raw := range res.Matches {
		m, ok := normalizeMatch(raw)
		if !ok {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (p *PineconeIndex) Delete(ctx context.Context, paperId uuid.UUID) error {
	// Serverless indexes reject filtered deletes, so resolve the ids first
	// with a metadata-filtered query, then delete by id.
	req := pineconeQueryRequest{
		Vector: make([]float32, p.dimension()),
		Filter: map[string]interface{}{"paper_id": paperId.String()},
		TopK:   10000,
	}

	var res pineconeQueryResponse
	if err := p.post(ctx, "/query", req, &res); err != nil {
		return err
	}

	ids := make([]string, 0, len(res.Matches))
	for _, raw := range res.Matches {
		if id := stringField(raw, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	return p.post(ctx, "/vectors/delete", pineconeDeleteRequest{Ids: ids}, nil)
}

// Stats reports index-wide vector counts.
func (p *PineconeIndex) Stats(ctx context.Context) (totalVectors int64, dimension int, err error) {
	var res struct {
		TotalVectorCount int64 `json:"totalVectorCount"`
		Dimension        int   `json:"dimension"`
	}
	if err := p.post(ctx, "/describe_index_stats", struct{}{}, &res); err != nil {
		return 0, 0, err
	}
	return res.TotalVectorCount, res.Dimension, nil
}

func (p *PineconeIndex) dimension() int {
	return 768
}

func (p *PineconeIndex) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pinecone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.Host+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create pinecone request: %w", err)
	}
	req.Header.Set("Api-Key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read pinecone response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone error: status %d, body: %s", res.StatusCode, string(resBody))
	}

	if out != nil {
		if err := json.Unmarshal(resBody, out); err != nil {
			return fmt.Errorf("unmarshal pinecone response: %w", err)
		}
	}
	return nil
}

// normalizeMatch converts one raw match into the fixed Match record.
// Metadata may be absent or partially populated; the paper id and chunk
// index fall back to the "<paperId>_<chunkIndex>" vector id convention.
func normalizeMatch(raw map[string]interface{}) (Match, bool) {
	meta, _ := raw["metadata"].(map[string]interface{})

	paperIdStr := stringField(meta, "paper_id")
	chunkIndex, haveIndex := intField(meta, "chunk_index")

	if paperIdStr == "" || !haveIndex {
		id := stringField(raw, "id")
		if sep := strings.LastIndex(id, "_"); sep > 0 {
			if paperIdStr == "" {
				paperIdStr = id[:sep]
			}
			if !haveIndex {
				if idx, err := strconv.Atoi(id[sep+1:]); err == nil {
					chunkIndex = idx
				}
			}
		}
	}

	paperId, err := uuid.Parse(paperIdStr)
	if err != nil {
		return Match{}, false
	}

	return Match{
		PaperId:    paperId,
		Title:      stringField(meta, "title"),
		ChunkIndex: chunkIndex,
		Text:       stringField(meta, "text"),
		FilePath:   stringField(meta, "file_path"),
		Score:      floatField(raw, "score"),
	}, true
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]interface{}, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatField(m map[string]interface{}, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
