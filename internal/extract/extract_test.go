package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner is a test double for CommandRunner.
type fakeRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.output, f.err
}

func TestPDFExtractSplitsPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	runner := &fakeRunner{output: []byte("page one text\f\f  \npage three text")}
	pages, err := NewPDFWithRunner(runner).Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", path, "-"}, runner.args)

	// page 2 had no extractable text and is omitted; numbering is preserved
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNum)
	assert.Equal(t, 3, pages[1].PageNum)
	assert.Equal(t, "page one text", pages[0].Text)
	assert.Equal(t, path, pages[0].Source)
}

func TestPDFExtractMissingFile(t *testing.T) {
	_, err := NewPDFWithRunner(&fakeRunner{}).Extract("/nonexistent/x.pdf")
	assert.Error(t, err)
}

func TestPDFExtractToolFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	runner := &fakeRunner{err: errors.New("exit status 1")}
	_, err := NewPDFWithRunner(runner).Extract(path)
	assert.ErrorContains(t, err, "pdftotext")
}

func TestPlaintextExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world. second sentence."), 0o644))

	pages, err := NewPlaintext().Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].PageNum)
	assert.Equal(t, "hello world. second sentence.", pages[0].Text)
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &PDF{}, ForPath("a/b/report.PDF"))
	assert.IsType(t, &Plaintext{}, ForPath("notes.md"))
}
