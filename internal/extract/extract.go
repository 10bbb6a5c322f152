// Package extract turns document files into ordered, non-empty pages.
package extract

import (
	"os/exec"
	"path/filepath"
	"strings"

	"docqa/internal/domain"
)

// CommandRunner abstracts external tool execution so extractors can be
// tested without the tool installed.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// ForPath picks an extractor by file extension. PDF files go through
// pdftotext; everything else is treated as plain text.
func ForPath(path string) domain.Extractor {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDF()
	}
	return NewPlaintext()
}

// pagesFromText splits raw extractor output on form feeds into 1-indexed
// pages, dropping pages with no extractable text while preserving the
// physical page numbering.
func pagesFromText(raw, source string) []domain.Page {
	var pages []domain.Page
	for i, seg := range strings.Split(raw, "\f") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		pages = append(pages, domain.Page{
			PageNum: i + 1,
			Text:    seg,
			Source:  source,
		})
	}
	return pages
}
