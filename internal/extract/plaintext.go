package extract

import (
	"fmt"
	"os"

	"docqa/internal/domain"
)

// Plaintext extracts pages from .txt/.md files. Form feeds separate pages;
// a file without any becomes a single page 1.
type Plaintext struct{}

// NewPlaintext creates a plain-text extractor.
func NewPlaintext() *Plaintext { return &Plaintext{} }

// Extract returns the non-empty pages of the text file at path.
func (*Plaintext) Extract(path string) ([]domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pagesFromText(string(data), path), nil
}
