package answer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Name() string { return "fake" }

func (fakeEmbedder) Embed(string) ([]float64, error) { return []float64{1, 0}, nil }

func (fakeEmbedder) EmbedBatch(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range out {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

type fakeSearcher struct {
	chunks []domain.RetrievedChunk
	err    error
}

func (f fakeSearcher) Query([]float64, int) ([]domain.RetrievedChunk, error) {
	return f.chunks, f.err
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(prompt string, temperature float64, maxTokens int) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func retrieved(id, text string, score float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk:           domain.Chunk{ChunkID: id, Text: text, PageNum: 3, ChunkIndex: 1, SourceName: "doc"},
		SimilarityScore: score,
	}
}

func TestEmptyRetrievalReturnsSentinel(t *testing.T) {
	gen := &fakeGenerator{text: "should never be called"}
	s := New(fakeEmbedder{}, fakeSearcher{}, gen, 5, nil)

	res, err := s.Answer("anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "Not found in the document.", res.Text)
	assert.Empty(t, res.Retrieved)
	assert.False(t, res.Degraded)
	assert.Empty(t, gen.prompt, "generator must not run on empty retrieval")
}

func TestNotReadyPropagates(t *testing.T) {
	s := New(fakeEmbedder{}, fakeSearcher{err: domain.ErrNotReady}, &fakeGenerator{}, 5, nil)
	_, err := s.Answer("q", nil)
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestNormalAnswerKeepsExistingCitation(t *testing.T) {
	gen := &fakeGenerator{text: "Revenue grew 12% [doc:p3:c1]."}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p3:c1", "Revenue grew 12%.", 0.9)}}, gen, 5, nil)

	res, err := s.Answer("how did revenue change?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12% [doc:p3:c1].", res.Text)
	assert.False(t, res.Degraded)
}

func TestMissingCitationAppended(t *testing.T) {
	gen := &fakeGenerator{text: "Revenue grew 12%."}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{
		retrieved("doc:p3:c1", "Revenue grew 12%.", 0.9),
		retrieved("doc:p4:c0", "Other text.", 0.5),
	}}, gen, 5, nil)

	res, err := s.Answer("how did revenue change?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%. [doc:p3:c1]", res.Text, "top-ranked chunk id is appended")
}

func TestLegacyPageOnlyCitationAccepted(t *testing.T) {
	gen := &fakeGenerator{text: "Margin held steady [p3:c1]."}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p3:c1", "Margin.", 0.8)}}, gen, 5, nil)

	res, err := s.Answer("margin?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Margin held steady [p3:c1].", res.Text)
}

func TestSentinelAnswerLeftUntouched(t *testing.T) {
	gen := &fakeGenerator{text: "Not found in the document."}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p3:c1", "text", 0.8)}}, gen, 5, nil)

	res, err := s.Answer("unrelated question", nil)
	require.NoError(t, err)
	assert.Equal(t, "Not found in the document.", res.Text)
	assert.NotContains(t, res.Text, "[doc:")
}

func TestDegradedFallbackOnGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p3:c1", "The margin improved on lower costs.", 0.9)}}, gen, 5, nil)

	res, err := s.Answer("what about margins?", nil)
	require.NoError(t, err, "generation failures must never propagate")
	assert.True(t, res.Degraded)
	assert.Equal(t, "quota exceeded", res.Reason)
	assert.True(t, strings.HasPrefix(res.Text, DegradedMarker))
	assert.Contains(t, res.Text, "doc:p3:c1")
	assert.Contains(t, res.Text, "The margin improved")
	require.Len(t, res.Retrieved, 1)
}

func TestDegradedExcerptBounded(t *testing.T) {
	long := strings.Repeat("x", 2000)
	gen := &fakeGenerator{err: errors.New("boom")}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p1:c0", long, 0.9)}}, gen, 5, nil)

	res, err := s.Answer("q", nil)
	require.NoError(t, err)
	assert.Less(t, len(res.Text), 700)
}

func TestEmptyGenerationBecomesSentinel(t *testing.T) {
	gen := &fakeGenerator{text: "   "}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p1:c0", "text", 0.9)}}, gen, 5, nil)

	res, err := s.Answer("q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Not found in the document.", res.Text)
}

func TestPromptContainsContextAndHistory(t *testing.T) {
	gen := &fakeGenerator{text: "fine [doc:p3:c1]"}
	s := New(fakeEmbedder{}, fakeSearcher{chunks: []domain.RetrievedChunk{retrieved("doc:p3:c1", "chunk body text", 0.9)}}, gen, 5, nil)

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	_, err := s.Answer("follow-up", history)
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "[doc:p3:c1]\nchunk body text")
	assert.Contains(t, gen.prompt, "user: earlier question")
	assert.Contains(t, gen.prompt, "assistant: earlier answer")
	assert.Contains(t, gen.prompt, "Question: follow-up")
	assert.Contains(t, gen.prompt, Sentinel)
}

func TestBuildContextRankOrder(t *testing.T) {
	ctx := buildContext([]domain.RetrievedChunk{
		retrieved("doc:p1:c0", "first", 0.9),
		retrieved("doc:p2:c0", "second", 0.5),
	})
	assert.Less(t, strings.Index(ctx, "first"), strings.Index(ctx, "second"))
	assert.Contains(t, ctx, "[doc:p1:c0]\nfirst\n\n[doc:p2:c0]\nsecond")
}

func TestCitationPattern(t *testing.T) {
	assert.True(t, citationPattern.MatchString("see [report:p12:c3] here"))
	assert.True(t, citationPattern.MatchString("see [p12:c3]"))
	assert.False(t, citationPattern.MatchString("no citation [here]"))
	assert.False(t, citationPattern.MatchString("p12:c3 without brackets"))
}
