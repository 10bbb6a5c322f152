package chunker

import (
	"path/filepath"
	"strings"

	"docqa/internal/domain"
)

// Chunker splits page text into overlapping, size-bounded chunks along
// sentence boundaries. Given identical input and parameters the output is
// bit-identical across runs.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. Non-positive parameters fall back to defaults
// (512-character chunks, 100-character overlap).
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkPages chunks every page in order. A page whose text is empty after
// whitespace normalisation yields zero chunks.
func (c *Chunker) ChunkPages(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, p := range pages {
		chunks = append(chunks, c.chunkPage(p)...)
	}
	return chunks
}

func (c *Chunker) chunkPage(page domain.Page) []domain.Chunk {
	sourceName := SourceName(page.Source)
	sentences := splitSentences(page.Text)

	var chunks []domain.Chunk
	var current []string
	currentLen := 0
	chunkIdx := 0

	emit := func(text string) {
		chunks = append(chunks, domain.Chunk{
			ChunkID:    domain.ChunkID(sourceName, page.PageNum, chunkIdx),
			Text:       text,
			PageNum:    page.PageNum,
			ChunkIndex: chunkIdx,
			SourceName: sourceName,
		})
		chunkIdx++
	}

	for _, sentence := range sentences {
		if currentLen+len(sentence) > c.chunkSize && len(current) > 0 {
			emit(strings.Join(current, " "))

			// Seed the next buffer with the tail of the one just closed.
			seed := c.overlapTail(current)
			current = append(seed, sentence)
			currentLen = len(strings.Join(current, " "))
		} else {
			current = append(current, sentence)
			currentLen += len(sentence) + 1 // +1 for the joining space
		}
	}
	if len(current) > 0 {
		emit(strings.Join(current, " "))
	}
	return chunks
}

// overlapTail walks backward over the closed buffer, keeping sentences while
// their cumulative length (plus one separator each) stays within the overlap
// budget. Order is preserved.
func (c *Chunker) overlapTail(sentences []string) []string {
	total := 0
	var tail []string
	for i := len(sentences) - 1; i >= 0; i-- {
		if total+len(sentences[i]) > c.overlap {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		total += len(sentences[i]) + 1
	}
	return tail
}

// splitSentences normalises whitespace and splits on '.', '!' or '?'
// followed by whitespace. Empty fragments are discarded.
func splitSentences(text string) []string {
	norm := strings.Join(strings.Fields(text), " ")
	if norm == "" {
		return nil
	}
	var sentences []string
	start := 0
	for i := 0; i < len(norm)-1; i++ {
		if isBoundary(norm[i]) && norm[i+1] == ' ' {
			if s := strings.TrimSpace(norm[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 2
		}
	}
	if s := strings.TrimSpace(norm[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isBoundary(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

// SourceName derives the citation source label from a document path:
// the base name with its extension removed.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
