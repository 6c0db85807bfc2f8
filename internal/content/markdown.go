package content

import (
	"fmt"
	"strings"
)

// MarkdownExport re-emits a loaded tree as a markdown document: a front
// matter block, the document title, the introduction, then every part,
// chapter and extract as a heading line followed by its text, with the
// heading level growing by exactly one per tree depth — the exact inverse of
// the leveling rule applied at import. Synthetic single containers
// (small/medium shapes) are emitted without their own heading line.
// Conclusions follow each node's children; the tutorial's comes last.
func MarkdownExport(tree *Tree) string {
	var b strings.Builder
	tut := tree.Tutorial

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", tut.Title)
	if len(tut.Authors) > 0 {
		names := make([]string, 0, len(tut.Authors))
		for _, a := range tut.Authors {
			names = append(names, a.Username)
		}
		fmt.Fprintf(&b, "authors: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "date: %s\n", tut.UpdatedAt.Format("2006-01-02"))
	b.WriteString("---\n\n")

	writeHeading(&b, 1, tut.Title)
	writeText(&b, tut.Introduction)

	switch tut.Shape {
	case ShapeSmall:
		for _, cn := range tree.Chapters {
			writeChapter(&b, cn, 2, false)
		}
	case ShapeMedium:
		for _, pn := range tree.Parts {
			writePart(&b, pn, 2, false)
		}
	case ShapeBig:
		for _, pn := range tree.Parts {
			writePart(&b, pn, 2, true)
		}
	}

	writeText(&b, tut.Conclusion)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writePart(b *strings.Builder, pn *PartNode, level int, emitHeading bool) {
	childLevel := level
	if emitHeading {
		writeHeading(b, level, pn.Part.Title)
		childLevel = level + 1
	}
	writeText(b, pn.Part.Introduction)
	for _, cn := range pn.Chapters {
		writeChapter(b, cn, childLevel, true)
	}
	writeText(b, pn.Part.Conclusion)
}

func writeChapter(b *strings.Builder, cn *ChapterNode, level int, emitHeading bool) {
	childLevel := level
	if emitHeading {
		writeHeading(b, level, cn.Chapter.Title)
		childLevel = level + 1
	}
	writeText(b, cn.Chapter.Introduction)
	for _, e := range cn.Extracts {
		writeHeading(b, childLevel, e.Title)
		writeText(b, e.Text)
	}
	writeText(b, cn.Chapter.Conclusion)
}

func writeHeading(b *strings.Builder, level int, title string) {
	b.WriteString(strings.Repeat("#", level))
	b.WriteString(" ")
	b.WriteString(title)
	b.WriteString("\n\n")
}

func writeText(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n\n")
}
