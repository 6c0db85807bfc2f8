// Package docsource converts uploaded documents into the markdown line
// stream the import engine consumes. Markdown passes through untouched;
// other formats are flattened to markdown, mapping their native heading
// structure to #-runs.
package docsource

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Source converts raw document bytes into markdown lines.
type Source interface {
	Lines(r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists file extensions the platform accepts for import.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".docx":
		return &DOCXSource{}, nil
	case ".pdf":
		return &PDFSource{FallbackPdftotext: true}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// emitter accumulates markdown lines, separating blocks by a blank line.
type emitter struct {
	lines []string
}

func (e *emitter) heading(level int, title string) {
	if len(e.lines) > 0 {
		e.lines = append(e.lines, "")
	}
	e.lines = append(e.lines, strings.Repeat("#", level)+" "+title)
}

func (e *emitter) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(e.lines) > 0 {
		e.lines = append(e.lines, "")
	}
	e.lines = append(e.lines, strings.Split(text, "\n")...)
}
