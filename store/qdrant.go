package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

// QdrantIndex implements admsg.ProductIndex and admsg.VectorQueryIndex
// using Qdrant's REST API.
type QdrantIndex struct {
	baseURL    string
	collection string
	apiKey     string
	client     *http.Client
}

// QdrantConfig configures the Qdrant index.
type QdrantConfig struct {
	BaseURL    string // e.g. "http://localhost:6333"
	Collection string // collection name, default "products"
	APIKey     string // optional API key
}

// NewQdrantIndex creates a product index backed by Qdrant.
func NewQdrantIndex(config QdrantConfig) *QdrantIndex {
	if config.Collection == "" {
		config.Collection = "products"
	}
	return &QdrantIndex{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		collection: config.Collection,
		apiKey:     config.APIKey,
		client:     &http.Client{},
	}
}

func (q *QdrantIndex) url(path string) string {
	return fmt.Sprintf("%s/collections/%s%s", q.baseURL, q.collection, path)
}

func (q *QdrantIndex) doRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("qdrant %s %s: %d %s", method, url, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, id string, embedding []float32, document string, metadata map[string]string) error {
	payload := map[string]interface{}{
		"document": document,
	}
	for k, v := range metadata {
		payload[k] = v
	}

	body := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":      id,
				"vector":  embedding,
				"payload": payload,
			},
		},
	}

	_, err := q.doRequest(ctx, "PUT", q.url("/points"), body)
	return err
}

func (q *QdrantIndex) Get(ctx context.Context, ids []string) ([]admsg.IndexHit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body := map[string]interface{}{
		"ids":          ids,
		"with_payload": true,
	}
	respBody, err := q.doRequest(ctx, "POST", q.url("/points"), body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []struct {
			ID      interface{}            `json:"id"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	hits := make([]admsg.IndexHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, hitFromPayload(fmt.Sprintf("%v", r.ID), 1, r.Payload))
	}
	return hits, nil
}

func (q *QdrantIndex) QueryVector(ctx context.Context, vector []float32, filter map[string]string, topK int) ([]admsg.IndexHit, error) {
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	if len(filter) > 0 {
		must := make([]map[string]interface{}, 0, len(filter))
		for k, v := range filter {
			must = append(must, map[string]interface{}{
				"key":   k,
				"match": map[string]interface{}{"value": v},
			})
		}
		body["filter"] = map[string]interface{}{
			"must": must,
		}
	}

	respBody, err := q.doRequest(ctx, "POST", q.url("/points/search"), body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []struct {
			ID      interface{}            `json:"id"`
			Score   float32                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	hits := make([]admsg.IndexHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, hitFromPayload(fmt.Sprintf("%v", r.ID), r.Score, r.Payload))
	}
	return hits, nil
}

// Delete removes points by id.
func (q *QdrantIndex) Delete(ctx context.Context, ids []string) error {
	body := map[string]interface{}{
		"points": ids,
	}
	_, err := q.doRequest(ctx, "POST", q.url("/points/delete"), body)
	return err
}

func hitFromPayload(id string, score float32, payload map[string]interface{}) admsg.IndexHit {
	h := admsg.IndexHit{
		ID:       id,
		Score:    score,
		Metadata: make(map[string]string),
	}
	if document, ok := payload["document"].(string); ok {
		h.Document = document
	}
	for k, v := range payload {
		if k != "document" {
			h.Metadata[k] = fmt.Sprintf("%v", v)
		}
	}
	return h
}

// Compile-time interface checks.
var _ admsg.ProductIndex = (*QdrantIndex)(nil)
var _ admsg.VectorQueryIndex = (*QdrantIndex)(nil)
