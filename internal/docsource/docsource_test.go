package docsource

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"tutorial.md", false},
		{"tutorial.markdown", false},
		{"page.html", false},
		{"page.HTM", false},
		{"draft.docx", false},
		{"paper.pdf", false},
		{"notes.txt", true},
		{"archive.zip", true},
		{"noextension", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.md") {
		t.Error("expected .md to be supported")
	}
	if IsSupportedExtension("a.txt") {
		t.Error("expected .txt to be unsupported")
	}
}

func TestMarkdownSource_Passthrough(t *testing.T) {
	input := "# Title\n\nIntro text.\n\n## Section\n\nBody."
	src := &MarkdownSource{}
	lines, err := src.Lines(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	want := []string{"# Title", "", "Intro text.", "", "## Section", "", "Body."}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestHTMLSource_HeadingsAndText(t *testing.T) {
	input := `<html><head><title>ignored</title></head><body>
<h1>My Tutorial</h1>
<p>Welcome to the course.</p>
<h2>First Part</h2>
<p>Part intro.</p>
<h3>First Chapter</h3>
<p>Chapter body.</p>
<script>alert("skip me")</script>
</body></html>`

	src := &HTMLSource{}
	lines, err := src.Lines(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	joined := strings.Join(lines, "\n")

	for _, want := range []string{
		"# My Tutorial",
		"## First Part",
		"### First Chapter",
		"Welcome to the course.",
		"Chapter body.",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "skip me") {
		t.Errorf("script content leaked into output:\n%s", joined)
	}

	// The heading order must survive the flattening.
	h1 := strings.Index(joined, "# My Tutorial")
	h2 := strings.Index(joined, "## First Part")
	h3 := strings.Index(joined, "### First Chapter")
	if !(h1 < h2 && h2 < h3) {
		t.Errorf("headings out of order:\n%s", joined)
	}
}

func TestHTMLSource_NoHeadings(t *testing.T) {
	input := `<html><body><p>Just a paragraph.</p></body></html>`
	src := &HTMLSource{}
	lines, err := src.Lines(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0] != "Just a paragraph." {
		t.Errorf("got %q, want single paragraph line", lines)
	}
}
