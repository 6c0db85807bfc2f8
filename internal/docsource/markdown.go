package docsource

import (
	"bufio"
	"io"
)

// MarkdownSource passes markdown through as-is, split into lines.
type MarkdownSource struct{}

func (s *MarkdownSource) Lines(r io.Reader, filename string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
