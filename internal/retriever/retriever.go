// Package retriever orchestrates chunk ingestion and nearest-neighbour
// retrieval over a vector index.
package retriever

import (
	"fmt"

	"go.uber.org/zap"

	"docqa/internal/domain"
)

// Retriever owns the vector index handle and a local chunk_id → Chunk cache
// mirroring it. "Ready but empty" and "never initialised" are distinct
// states: the former yields empty results, the latter an error.
type Retriever struct {
	index   domain.VectorIndex
	chunks  map[string]domain.Chunk
	sources map[string]bool
	ready   bool
	log     *zap.Logger
}

// New creates a Retriever. A previously persisted index on the backing
// store counts as ready, enabling cache reuse across restarts.
func New(index domain.VectorIndex, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{
		index:   index,
		chunks:  make(map[string]domain.Chunk),
		sources: make(map[string]bool),
		ready:   index.Exists(),
		log:     log,
	}
}

// Ingest upserts every chunk keyed by its chunk_id and marks the index
// ready. Re-ingesting a chunk_id overwrites its vector, text and metadata.
// The index is left untouched when lengths mismatch.
func (r *Retriever) Ingest(chunks []domain.Chunk, embeddings [][]float64) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings", domain.ErrLengthMismatch, len(chunks), len(embeddings))
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metas := make([]domain.ChunkMeta, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ChunkID
		documents[i] = ch.Text
		metas[i] = domain.ChunkMeta{PageNum: ch.PageNum, ChunkIndex: ch.ChunkIndex, SourceName: ch.SourceName}
		if r.sources[ch.SourceName] {
			r.log.Warn("re-ingesting source; stale chunk ids may remain until an explicit rebuild",
				zap.String("source", ch.SourceName))
			r.sources[ch.SourceName] = false // warn once per ingest
		}
	}

	if err := r.index.Upsert(ids, embeddings, documents, metas); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	for _, ch := range chunks {
		r.chunks[ch.ChunkID] = ch
		r.sources[ch.SourceName] = true
	}
	r.ready = true
	r.log.Info("indexed chunks", zap.Int("count", len(chunks)))
	return nil
}

// Query performs nearest-neighbour search against the embedding and returns
// up to topK results ordered by descending similarity (1 - cosine distance).
// It fails with ErrNotReady when nothing was ever ingested or loaded; a
// ready index with no matches returns an empty slice, never an error.
func (r *Retriever) Query(queryEmbedding []float64, topK int) ([]domain.RetrievedChunk, error) {
	if !r.ready {
		return nil, fmt.Errorf("%w: call Ingest first", domain.ErrNotReady)
	}

	res, err := r.index.Query(queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	retrieved := make([]domain.RetrievedChunk, 0, len(res.IDs))
	for i, id := range res.IDs {
		chunk, ok := r.chunks[id]
		if !ok {
			// Not in the local cache (index loaded from a prior run);
			// rebuild the chunk from the persisted document and metadata.
			chunk = domain.Chunk{
				ChunkID:    id,
				Text:       res.Documents[i],
				PageNum:    res.Metas[i].PageNum,
				ChunkIndex: res.Metas[i].ChunkIndex,
				SourceName: res.Metas[i].SourceName,
			}
		}
		retrieved = append(retrieved, domain.RetrievedChunk{
			Chunk:           chunk,
			SimilarityScore: 1 - res.Distances[i],
		})
	}
	for _, rc := range retrieved {
		r.log.Debug("retrieved chunk",
			zap.String("chunk_id", rc.ChunkID),
			zap.Int("page", rc.PageNum),
			zap.Float64("score", rc.SimilarityScore))
	}
	return retrieved, nil
}

// Exists reports whether a previously persisted index is present on the
// backing store.
func (r *Retriever) Exists() bool {
	return r.index.Exists()
}
