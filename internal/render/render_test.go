package render

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	html, err := ToHTML("## Heading\n\nSome *emphasis* and a [link](https://example.org).")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	for _, want := range []string{"<h2>", "<em>emphasis</em>", `href="https://example.org"`} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestToHTML_EscapesRawHTML(t *testing.T) {
	html, err := ToHTML(`before <script>alert(1)</script> after`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw html not escaped:\n%s", html)
	}
}
