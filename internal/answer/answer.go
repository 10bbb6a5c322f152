// Package answer builds grounded, citation-bearing answers from retrieved
// chunks and a generation model.
package answer

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/domain"
)

// Sentinel is the exact answer returned when nothing relevant was found.
// The string itself is part of the contract, not just a message.
const Sentinel = "Not found in the document."

// DegradedMarker prefixes every fallback answer produced when the
// generation backend is unavailable.
const DegradedMarker = "[generation unavailable]"

const (
	defaultTopK         = 5
	maxOutputTokens     = 1000
	degradedExcerptMax  = 500
	generateTemperature = 0 // fully deterministic decoding
)

// citationPattern matches a bracketed chunk_id, either the full
// "source:p<int>:c<int>" form or the legacy page-only "p<int>:c<int>".
var citationPattern = regexp.MustCompile(`\[([^:\[\]]+:)?p[0-9]+:c[0-9]+\]`)

// Searcher is the retrieval-facing subset used by the synthesizer.
type Searcher interface {
	Query(queryEmbedding []float64, topK int) ([]domain.RetrievedChunk, error)
}

// Result is a synthesized answer. Degraded answers are still valid,
// citation-bearing answers; Reason records why generation failed.
type Result struct {
	Text      string
	Degraded  bool
	Reason    string
	Retrieved []domain.RetrievedChunk
}

// Synthesizer turns a question into a grounded answer: retrieve, build
// context, generate, degrade on backend failure, enforce citations.
type Synthesizer struct {
	embedder  domain.Embedder
	searcher  Searcher
	generator domain.Generator
	topK      int
	log       *zap.Logger
}

// New creates a Synthesizer. topK <= 0 falls back to 5.
func New(embedder domain.Embedder, searcher Searcher, generator domain.Generator, topK int, log *zap.Logger) *Synthesizer {
	if topK <= 0 {
		topK = defaultTopK
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{embedder: embedder, searcher: searcher, generator: generator, topK: topK, log: log}
}

// Answer answers the query against the indexed corpus. History, when
// present, is included as prior-turn context for the generation model.
// Generation failures never surface to the caller; they produce a degraded
// result built from the top retrieved chunk.
func (s *Synthesizer) Answer(query string, history []domain.Turn) (Result, error) {
	queryEmbedding, err := s.embedder.Embed(query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}
	retrieved, err := s.searcher.Query(queryEmbedding, s.topK)
	if err != nil {
		return Result{}, err
	}
	s.log.Debug("retrieval done", zap.String("query", query), zap.Int("chunks", len(retrieved)))

	if len(retrieved) == 0 {
		return Result{Text: Sentinel, Retrieved: []domain.RetrievedChunk{}}, nil
	}

	prompt := buildPrompt(query, buildContext(retrieved), history)

	res := Result{Retrieved: retrieved}
	text, err := s.generator.Generate(prompt, generateTemperature, maxOutputTokens)
	if err != nil {
		s.log.Warn("generation failed, degrading to top chunk", zap.Error(err))
		res.Degraded = true
		res.Reason = err.Error()
		res.Text = degradedAnswer(retrieved[0])
	} else if strings.TrimSpace(text) == "" {
		res.Text = Sentinel
	} else {
		res.Text = strings.TrimSpace(text)
	}

	res.Text = enforceCitation(res.Text, retrieved)
	return res, nil
}

// buildContext concatenates retrieved chunks as labeled blocks in rank
// order, highest similarity first.
func buildContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = fmt.Sprintf("[%s]\n%s", ch.ChunkID, ch.Text)
	}
	return strings.Join(parts, "\n\n")
}

func buildPrompt(query, context string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString(`You are a document-grounded Q&A assistant. Answer questions strictly from the provided document context.

RULES:
1. Answer ONLY using information from the provided context.
2. If the answer is not in the context, respond exactly with: "` + Sentinel + `"
3. Every answer must include at least one citation such as [report:p13:c2], using the exact [chunk_id] markers that prefix the context blocks.
4. Do NOT use outside knowledge.
5. Do NOT invent numbers or facts not present in the context.
6. Be concise and factual.`)

	if len(history) > 0 {
		b.WriteString("\n\nPrior conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\n\nQuestion: %s\n\nDocument Context:\n%s\n\nAnswer the question ONLY using the above context. Include citations.", query, context)
	return b.String()
}

// degradedAnswer builds the fallback answer from the single
// highest-similarity chunk: a leading marker, the chunk_id tag, and a
// bounded excerpt of the chunk text.
func degradedAnswer(top domain.RetrievedChunk) string {
	excerpt := top.Text
	if runes := []rune(excerpt); len(runes) > degradedExcerptMax {
		excerpt = string(runes[:degradedExcerptMax])
	}
	return fmt.Sprintf("%s Top relevant passage:\n[%s] %s", DegradedMarker, top.ChunkID, excerpt)
}

// enforceCitation guarantees every non-sentinel answer carries at least one
// citation token by appending the top-ranked chunk_id when none is present.
func enforceCitation(text string, retrieved []domain.RetrievedChunk) string {
	if strings.Contains(text, Sentinel) {
		return text
	}
	if citationPattern.MatchString(text) {
		return text
	}
	if len(retrieved) == 0 {
		return text
	}
	return fmt.Sprintf("%s [%s]", text, retrieved[0].ChunkID)
}
