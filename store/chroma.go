package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

// ChromaIndex implements admsg.ProductIndex, admsg.VectorQueryIndex and
// admsg.TextQueryIndex using Chroma's REST API. Text queries are embedded
// server-side by the collection's embedding function, so ChromaIndex works
// without a client-side embedder.
type ChromaIndex struct {
	baseURL    string
	collection string
	client     *http.Client

	mu           sync.Mutex
	collectionID string // resolved lazily from the collection name
}

// ChromaConfig configures the Chroma index.
type ChromaConfig struct {
	BaseURL    string // e.g. "http://localhost:8000"
	Collection string // collection name, default "products"
}

// NewChromaIndex creates a product index backed by Chroma. The collection
// is created on first use if it does not exist.
func NewChromaIndex(config ChromaConfig) *ChromaIndex {
	if config.Collection == "" {
		config.Collection = "products"
	}
	return &ChromaIndex{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		collection: config.Collection,
		client:     &http.Client{},
	}
}

func (c *ChromaIndex) doRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
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

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chroma %s %s: %d %s", method, url, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// collectionURL resolves the collection id (get-or-create) and returns the
// URL for a collection-scoped path.
func (c *ChromaIndex) collectionURL(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collectionID == "" {
		body := map[string]interface{}{
			"name":          c.collection,
			"get_or_create": true,
		}
		respBody, err := c.doRequest(ctx, "POST", c.baseURL+"/api/v1/collections", body)
		if err != nil {
			return "", err
		}
		var resp struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return "", err
		}
		if resp.ID == "" {
			return "", fmt.Errorf("chroma: collection %q returned no id", c.collection)
		}
		c.collectionID = resp.ID
	}
	return fmt.Sprintf("%s/api/v1/collections/%s%s", c.baseURL, c.collectionID, path), nil
}

func (c *ChromaIndex) Upsert(ctx context.Context, id string, embedding []float32, document string, metadata map[string]string) error {
	url, err := c.collectionURL(ctx, "/upsert")
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"ids":       []string{id},
		"documents": []string{document},
		"metadatas": []map[string]string{metadata},
	}
	if len(embedding) > 0 {
		body["embeddings"] = [][]float32{embedding}
	}
	_, err = c.doRequest(ctx, "POST", url, body)
	return err
}

func (c *ChromaIndex) Get(ctx context.Context, ids []string) ([]admsg.IndexHit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	url, err := c.collectionURL(ctx, "/get")
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"ids":     ids,
		"include": []string{"documents", "metadatas"},
	}
	respBody, err := c.doRequest(ctx, "POST", url, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		IDs       []string            `json:"ids"`
		Documents []string            `json:"documents"`
		Metadatas []map[string]string `json:"metadatas"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	hits := make([]admsg.IndexHit, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		h := admsg.IndexHit{ID: id, Score: 1}
		if i < len(resp.Documents) {
			h.Document = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			h.Metadata = resp.Metadatas[i]
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (c *ChromaIndex) QueryVector(ctx context.Context, vector []float32, filter map[string]string, topK int) ([]admsg.IndexHit, error) {
	body := map[string]interface{}{
		"query_embeddings": [][]float32{vector},
	}
	return c.query(ctx, body, filter, topK)
}

func (c *ChromaIndex) QueryText(ctx context.Context, text string, filter map[string]string, topK int) ([]admsg.IndexHit, error) {
	body := map[string]interface{}{
		"query_texts": []string{text},
	}
	return c.query(ctx, body, filter, topK)
}

func (c *ChromaIndex) query(ctx context.Context, body map[string]interface{}, filter map[string]string, topK int) ([]admsg.IndexHit, error) {
	url, err := c.collectionURL(ctx, "/query")
	if err != nil {
		return nil, err
	}
	body["n_results"] = topK
	body["include"] = []string{"documents", "metadatas", "distances"}
	if len(filter) > 0 {
		where := make(map[string]interface{}, len(filter))
		for k, v := range filter {
			where[k] = v
		}
		body["where"] = where
	}

	respBody, err := c.doRequest(ctx, "POST", url, body)
	if err != nil {
		return nil, err
	}

	// Query responses are nested per query; a single query is sent.
	var resp struct {
		IDs       [][]string            `json:"ids"`
		Documents [][]string            `json:"documents"`
		Metadatas [][]map[string]string `json:"metadatas"`
		Distances [][]float32           `json:"distances"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	hits := make([]admsg.IndexHit, 0, len(ids))
	for i, id := range ids {
		h := admsg.IndexHit{ID: id, Score: 1}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			h.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			h.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			h.Score = 1 - resp.Distances[0][i]
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Delete removes records by id.
func (c *ChromaIndex) Delete(ctx context.Context, ids []string) error {
	url, err := c.collectionURL(ctx, "/delete")
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"ids": ids,
	}
	_, err = c.doRequest(ctx, "POST", url, body)
	return err
}

// Compile-time interface checks.
var _ admsg.ProductIndex = (*ChromaIndex)(nil)
var _ admsg.VectorQueryIndex = (*ChromaIndex)(nil)
var _ admsg.TextQueryIndex = (*ChromaIndex)(nil)
