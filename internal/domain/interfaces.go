package domain

import "fmt"

// Page is the text of a single document page, as produced by an extractor.
// Pages with no extractable text are never emitted.
type Page struct {
	PageNum int
	Text    string
	Source  string
}

// Chunk is a bounded, citable span of a document's text. Chunks are immutable
// once created; re-indexing only ever produces new chunks.
type Chunk struct {
	ChunkID    string
	Text       string
	PageNum    int
	ChunkIndex int
	SourceName string
}

// ChunkID builds the canonical chunk identifier "{source}:p{page}:c{index}".
// It is globally unique across all indexed documents.
func ChunkID(sourceName string, pageNum, chunkIndex int) string {
	return fmt.Sprintf("%s:p%d:c%d", sourceName, pageNum, chunkIndex)
}

// RetrievedChunk is a Chunk together with its similarity to a query.
type RetrievedChunk struct {
	Chunk
	SimilarityScore float64
}

// Turn is one entry in a conversation history.
type Turn struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Extractor turns a document file into its non-empty pages, in order.
type Extractor interface {
	Extract(path string) ([]Page, error)
}

// Embedder converts free text into a fixed-dimension numeric vector.
// The dimension must not change for the lifetime of an index.
type Embedder interface {
	Name() string
	Embed(text string) ([]float64, error)
	EmbedBatch(texts []string) ([][]float64, error)
}

// Generator produces free text from a prompt. Calls may fail (quota,
// network, malformed response); callers decide how to degrade.
type Generator interface {
	Generate(prompt string, temperature float64, maxTokens int) (string, error)
}

// QueryResult carries the parallel arrays returned by a vector index,
// ordered by ascending distance.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metas     []ChunkMeta
	Distances []float64
}

// ChunkMeta is the chunk metadata persisted alongside each vector.
type ChunkMeta struct {
	PageNum    int    `json:"page_num"`
	ChunkIndex int    `json:"chunk_index"`
	SourceName string `json:"source_name"`
}

// VectorIndex persists chunk vectors and supports nearest-neighbour search.
// Upsert is keyed by id: re-upserting an id overwrites vector, document and
// metadata. Exists reports whether a previously persisted index is present
// on the backing store.
type VectorIndex interface {
	Upsert(ids []string, vectors [][]float64, documents []string, metas []ChunkMeta) error
	Query(vector []float64, topK int) (QueryResult, error)
	Exists() bool
}
