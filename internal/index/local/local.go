// Package local implements a brute-force cosine vector index persisted as a
// JSON snapshot under a backing directory. The presence of the snapshot file
// alone signals a reusable prior index across process restarts.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"docqa/internal/domain"
)

const snapshotFile = "index.json"

type record struct {
	Vector   []float64        `json:"vector"`
	Document string           `json:"document"`
	Meta     domain.ChunkMeta `json:"meta"`
}

// Store is a file-backed vector index. All mutations happen through Upsert;
// concurrent readers are tolerated, concurrent writers are not assumed.
type Store struct {
	mu      sync.RWMutex
	dir     string
	records map[string]record
}

// Open creates a store rooted at dir, loading the persisted snapshot when
// one exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	s := &Store{dir: dir, records: make(map[string]record)}
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("decode index snapshot: %w", err)
	}
	return s, nil
}

func (s *Store) path() string { return filepath.Join(s.dir, snapshotFile) }

// Upsert stores every (id, vector, document, meta) tuple, overwriting
// existing ids, and persists the snapshot.
func (s *Store) Upsert(ids []string, vectors [][]float64, documents []string, metas []domain.ChunkMeta) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metas) {
		return errors.New("ids, vectors, documents and metas must have equal length")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		s.records[id] = record{Vector: vectors[i], Document: documents[i], Meta: metas[i]}
	}
	return s.persist()
}

// Query returns up to topK records ordered by ascending cosine distance.
func (s *Store) Query(vector []float64, topK int) (domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	type scored struct {
		id       string
		distance float64
	}
	all := make([]scored, 0, len(s.records))
	for id, rec := range s.records {
		all = append(all, scored{id: id, distance: 1 - cosine(rec.Vector, vector)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		return all[i].id < all[j].id // stable order for equal distances
	})
	if topK > len(all) {
		topK = len(all)
	}

	var res domain.QueryResult
	for _, sc := range all[:topK] {
		rec := s.records[sc.id]
		res.IDs = append(res.IDs, sc.id)
		res.Documents = append(res.Documents, rec.Document)
		res.Metas = append(res.Metas, rec.Meta)
		res.Distances = append(res.Distances, sc.distance)
	}
	return res, nil
}

// Exists reports whether a persisted snapshot is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Clear drops every record and removes the snapshot. Used by explicit
// index rebuilds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]record)
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
