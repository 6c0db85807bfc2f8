package content

import (
	"fmt"
	"regexp"
	"strings"
)

// Title is one heading line of a source document: its zero-based line number,
// its level (number of '#' markers) and its text.
type Title struct {
	Line  int
	Level int
	Text  string
}

// titlePattern matches a markdown heading: one or more '#' markers, a space,
// and non-empty remaining text.
var titlePattern = regexp.MustCompile(`^(#+) (.+)$`)

// ExtractTitles scans every line and returns the headings in file order.
// Non-matching lines are not retained; their text is recovered later from
// raw line ranges by the importer.
func ExtractTitles(lines []string) []Title {
	var titles []Title
	for i, line := range lines {
		m := titlePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		titles = append(titles, Title{
			Line:  i,
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return titles
}

// ErrNoTitleFound means the document contains no heading at all; an import
// cannot proceed without a document title.
var ErrNoTitleFound = fmt.Errorf("no title found in document")

// EmptyTitleError reports a heading whose text is empty.
type EmptyTitleError struct {
	Line int
}

func (e *EmptyTitleError) Error() string {
	return fmt.Sprintf("empty title at line %d", e.Line)
}

// NegativeTitleLevelError reports a heading whose level does not exceed the
// document's initial title level.
type NegativeTitleLevelError struct {
	Level        int
	InitialLevel int
	Line         int
}

func (e *NegativeTitleLevelError) Error() string {
	return fmt.Sprintf("title level %d at line %d does not exceed initial level %d",
		e.Level, e.Line, e.InitialLevel)
}

// InvalidLevelIncreaseError reports a heading whose level jumps by more than
// one relative to the preceding heading, which would skip a tree level.
type InvalidLevelIncreaseError struct {
	PreviousLevel int
	Level         int
	Line          int
}

func (e *InvalidLevelIncreaseError) Error() string {
	return fmt.Sprintf("title level increases from %d to %d at line %d (increase must be exactly 1)",
		e.PreviousLevel, e.Level, e.Line)
}

// CheckTitles validates that a title sequence forms a well-formed nested
// outline. Levels may decrease or stay flat by any amount between
// consecutive titles; only increases are constrained to exactly 1, and every
// title after the first must sit strictly below the initial level.
func CheckTitles(titles []Title) error {
	if len(titles) == 0 {
		return ErrNoTitleFound
	}
	if len(titles) == 1 {
		return nil
	}

	initial := titles[0].Level
	prev := initial
	for _, t := range titles[1:] {
		if t.Level <= initial {
			return &NegativeTitleLevelError{Level: t.Level, InitialLevel: initial, Line: t.Line}
		}
		if strings.TrimSpace(t.Text) == "" {
			return &EmptyTitleError{Line: t.Line}
		}
		if t.Level > prev && t.Level != prev+1 {
			return &InvalidLevelIncreaseError{PreviousLevel: prev, Level: t.Level, Line: t.Line}
		}
		prev = t.Level
	}
	return nil
}

// DeduceLevelsToMatch returns the contiguous heading levels, relative to the
// document's initial title level, that are structural for the given shape.
// Headings at any other level are in-body content, not tree boundaries.
func DeduceLevelsToMatch(initialLevel int, shape Shape) []int {
	depth := shape.Depth()
	levels := make([]int, 0, depth)
	for i := 1; i <= depth; i++ {
		levels = append(levels, initialLevel+i)
	}
	return levels
}
