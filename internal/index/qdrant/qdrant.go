// Package qdrant is a minimal REST client to Qdrant implementing the vector
// index contract. It assumes cosine distance and creates the collection on
// first upsert.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// Qdrant point ids must be UUIDs; derive them deterministically from the
// chunk_id so re-upserting a chunk overwrites its point.
var pointNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Store talks to a Qdrant collection over HTTP.
type Store struct {
	url        string
	apiKey     string
	collection string
	created    bool
	client     *http.Client
}

// Config contains connection details for a Qdrant vector store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Qdrant-backed store.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Upsert writes one point per id, keyed by a UUID derived from the id.
// The collection is created with the first batch's dimension if missing.
func (s *Store) Upsert(ids []string, vectors [][]float64, documents []string, metas []domain.ChunkMeta) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metas) {
		return errors.New("ids, vectors, documents and metas must have equal length")
	}
	if len(ids) == 0 {
		return nil
	}
	if !s.created {
		if err := s.ensureCollection(len(vectors[0])); err != nil {
			return err
		}
		s.created = true
	}

	points := make([]map[string]any, len(ids))
	for i := range ids {
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(pointNamespace, []byte(ids[i])).String(),
			"vector": vectors[i],
			"payload": map[string]any{
				"chunk_id":    ids[i],
				"text":        documents[i],
				"page_num":    metas[i].PageNum,
				"chunk_index": metas[i].ChunkIndex,
				"source_name": metas[i].SourceName,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

// Query returns up to topK points ordered by ascending cosine distance.
// Qdrant reports cosine similarity, so distance = 1 - score.
func (s *Store) Query(vector []float64, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				ChunkID    string `json:"chunk_id"`
				Text       string `json:"text"`
				PageNum    int    `json:"page_num"`
				ChunkIndex int    `json:"chunk_index"`
				SourceName string `json:"source_name"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return domain.QueryResult{}, err
	}

	var res domain.QueryResult
	for _, r := range resp.Result {
		res.IDs = append(res.IDs, r.Payload.ChunkID)
		res.Documents = append(res.Documents, r.Payload.Text)
		res.Metas = append(res.Metas, domain.ChunkMeta{
			PageNum:    r.Payload.PageNum,
			ChunkIndex: r.Payload.ChunkIndex,
			SourceName: r.Payload.SourceName,
		})
		res.Distances = append(res.Distances, 1-r.Score)
	}
	return res, nil
}

// Exists reports whether the collection is already present on the server.
func (s *Store) Exists() bool {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return false
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Clear drops the collection. Best-effort; used by explicit rebuilds.
func (s *Store) Clear() error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	s.created = false
	return nil
}

func (s *Store) ensureCollection(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 if the collection already exists with this schema.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Store) putJSON(url string, body any) error {
	return s.send(http.MethodPut, url, body, nil)
}

func (s *Store) postJSON(url string, body, out any) error {
	return s.send(http.MethodPost, url, body, out)
}

func (s *Store) send(method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
