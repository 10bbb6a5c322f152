package extract

import (
	"fmt"
	"os"
	"os/exec"

	"docqa/internal/domain"
)

// PDF extracts page text by shelling out to pdftotext. The -layout flag
// keeps table rows as additional lines on the page, and pdftotext separates
// pages with form feeds.
type PDF struct {
	runner CommandRunner
}

// NewPDF creates a PDF extractor using the host pdftotext binary.
func NewPDF() *PDF {
	return &PDF{runner: ExecRunner{}}
}

// NewPDFWithRunner creates a PDF extractor with a custom command runner.
func NewPDFWithRunner(r CommandRunner) *PDF {
	return &PDF{runner: r}
}

// Extract returns the non-empty pages of the PDF at path, in order.
func (p *PDF) Extract(path string) ([]domain.Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf not found: %w", err)
	}
	out, err := p.runner.Run("pdftotext", "-layout", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext %s: %w", path, err)
	}
	return pagesFromText(string(out), path), nil
}

// Available reports whether the pdftotext binary is on PATH. Used by the
// validate command, not by the pipeline.
func Available() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}
