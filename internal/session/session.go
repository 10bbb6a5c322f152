// Package session threads conversation history across query turns and folds
// multiple documents into one retrieval index.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/extract"
)

// QA is the answering-facing subset of the synthesizer used by a session.
type QA interface {
	Answer(query string, history []domain.Turn) (answer.Result, error)
}

// Session owns the conversation history and the document registry. History
// is append-only: no entry is ever mutated or removed, and the registry
// grows only through explicit AddDocument calls.
type Session struct {
	id            string
	chunker       *chunker.Chunker
	embedder      domain.Embedder
	retriever     Ingester
	qa            QA
	historyWindow int
	history       []domain.Turn
	documents     map[string][]domain.Page
	log           *zap.Logger
}

// Ingester is the ingestion-facing subset of the retriever.
type Ingester interface {
	Ingest(chunks []domain.Chunk, embeddings [][]float64) error
}

// New creates a Session. historyWindow bounds how many trailing turns are
// handed to the generation model per query; zero or negative means all.
func New(ch *chunker.Chunker, embedder domain.Embedder, retr Ingester, qa QA, historyWindow int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:            id,
		chunker:       ch,
		embedder:      embedder,
		retriever:     retr,
		qa:            qa,
		historyWindow: historyWindow,
		documents:     make(map[string][]domain.Page),
		log:           log.With(zap.String("session_id", id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// AddDocument extracts path, chunks and embeds its pages, and folds the
// chunks into the shared retrieval index without resetting prior documents.
func (s *Session) AddDocument(path string) error {
	pages, err := extract.ForPath(path).Extract(path)
	if err != nil {
		return err
	}
	return s.AddPages(path, pages)
}

// AddPages indexes already-extracted pages for path. Chunk ids stay unique
// across documents through their source_name component.
func (s *Session) AddPages(path string, pages []domain.Page) error {
	chunks := s.chunker.ChunkPages(pages)
	s.log.Info("chunked document",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := s.embedder.EmbedBatch(texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := s.retriever.Ingest(chunks, embeddings); err != nil {
		return err
	}
	s.documents[path] = pages
	return nil
}

// Ask answers the query, then appends a user turn and an assistant turn to
// the history, in that order.
func (s *Session) Ask(query string) (answer.Result, error) {
	res, err := s.qa.Answer(query, s.priorTurns())
	if err != nil {
		return answer.Result{}, err
	}
	s.history = append(s.history,
		domain.Turn{Role: domain.RoleUser, Content: query},
		domain.Turn{Role: domain.RoleAssistant, Content: res.Text},
	)
	return res, nil
}

// priorTurns returns the trailing window of history handed to the
// generation model. The stored history itself is never truncated.
func (s *Session) priorTurns() []domain.Turn {
	if s.historyWindow <= 0 || len(s.history) <= s.historyWindow {
		return s.history
	}
	return s.history[len(s.history)-s.historyWindow:]
}

// History returns a copy of the full conversation history.
func (s *Session) History() []domain.Turn {
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory resets the conversation. The document registry and the
// retrieval index are untouched.
func (s *Session) ClearHistory() {
	s.history = nil
}

// DocumentCount returns how many documents were folded into the index.
func (s *Session) DocumentCount() int { return len(s.documents) }
