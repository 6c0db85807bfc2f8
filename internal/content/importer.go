package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// nodeKind identifies which model a structural depth creates for a shape.
type nodeKind int

const (
	kindPart nodeKind = iota
	kindChapter
	kindExtract
)

// kindAtDepth maps a depth index within levels-to-match to the node kind
// created there. The deepest matched level is always an extract.
func kindAtDepth(shape Shape, d int) nodeKind {
	switch shape {
	case ShapeBig:
		return [...]nodeKind{kindPart, kindChapter, kindExtract}[d]
	case ShapeMedium:
		return [...]nodeKind{kindChapter, kindExtract}[d]
	default:
		return kindExtract
	}
}

// Importer builds a persisted content tree from a flat heading-annotated
// document in a single left-to-right sweep over its structural titles.
type Importer struct {
	store Store
	log   *slog.Logger
}

func NewImporter(store Store, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// SplitLines normalizes line endings and splits a raw document into lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Import validates the document's titles, creates the tutorial and its
// implicit containers, then sweeps the matched titles building parts,
// chapters and extracts with dense per-parent positions. Validation failures
// abort before any persistence; storage failures mid-sweep are returned as-is
// and may leave a partial tree (rollback is the store's concern).
func (imp *Importer) Import(ctx context.Context, lines []string, shape Shape, authors []string) (*Tutorial, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("unknown shape %q", shape)
	}

	titles := ExtractTitles(lines)
	if err := CheckTitles(titles); err != nil {
		return nil, err
	}

	root := titles[0]
	levels := DeduceLevelsToMatch(root.Level, shape)

	tut := &Tutorial{
		Title: root.Text,
		Slug:  Slugify(root.Text),
		Shape: shape,
	}
	for i, name := range authors {
		tut.Authors = append(tut.Authors, TutorialAuthor{Username: name, Position: i + 1})
	}
	if err := imp.store.CreateTutorial(ctx, tut); err != nil {
		return nil, fmt.Errorf("create tutorial: %w", err)
	}

	sw := &sweep{
		store:     imp.store,
		tut:       tut,
		shape:     shape,
		levels:    levels,
		open:      make([]any, len(levels)),
		counters:  make([]int, len(levels)),
		rootLevel: root.Level,
		lastLevel: root.Level,
		lastLine:  root.Line,
	}

	switch shape {
	case ShapeMedium:
		p := &Part{TutorialID: tut.ID, PositionInTutorial: 1}
		if err := imp.store.CreatePart(ctx, p); err != nil {
			return nil, fmt.Errorf("create implicit part: %w", err)
		}
		sw.implicitPart = p
	case ShapeSmall:
		c := &Chapter{TutorialID: &tut.ID, PositionInPart: 1, PositionInTutorial: 1}
		if err := imp.store.CreateChapter(ctx, c); err != nil {
			return nil, fmt.Errorf("create implicit chapter: %w", err)
		}
		sw.implicitChapter = c
	}

	matched := 0
	for _, t := range titles[1:] {
		d := levelIndex(levels, t.Level)
		if d < 0 {
			continue // in-body heading, folded into the surrounding span
		}
		if err := sw.assign(ctx, joinLines(lines, sw.lastLine+1, t.Line)); err != nil {
			return nil, err
		}
		if err := sw.openNode(ctx, t, d); err != nil {
			return nil, err
		}
		sw.lastLevel = t.Level
		sw.lastLine = t.Line
		matched++
	}

	// Trailing text, from the last matched title to end of document.
	if err := sw.assign(ctx, joinLines(lines, sw.lastLine+1, len(lines))); err != nil {
		return nil, err
	}

	if imp.log != nil {
		imp.log.Info("imported tutorial",
			"tutorial_id", tut.ID,
			"shape", string(shape),
			"matched_titles", matched,
		)
	}
	return tut, nil
}

// sweep holds the importer's in-progress state: one open node per structural
// depth plus per-depth position counters and last-matched bookkeeping.
type sweep struct {
	store  Store
	tut    *Tutorial
	shape  Shape
	levels []int

	open     []any // open[d] is *Part, *Chapter or *Extract
	counters []int

	implicitPart    *Part
	implicitChapter *Chapter

	rootLevel int
	lastLevel int
	lastLine  int
}

// assign routes a finished text span to the node that was open at the last
// matched level: the tutorial's introduction if that was the document title,
// the extract's body if it was the deepest level, a container introduction
// otherwise.
func (sw *sweep) assign(ctx context.Context, content string) error {
	if sw.lastLevel == sw.rootLevel {
		sw.tut.Introduction = appendText(sw.tut.Introduction, content)
		if err := sw.store.UpdateTutorial(ctx, sw.tut); err != nil {
			return fmt.Errorf("update tutorial introduction: %w", err)
		}
		return nil
	}

	d := levelIndex(sw.levels, sw.lastLevel)
	switch n := sw.open[d].(type) {
	case *Part:
		n.Introduction = appendText(n.Introduction, content)
		if err := sw.store.UpdatePart(ctx, n); err != nil {
			return fmt.Errorf("update part %d: %w", n.ID, err)
		}
	case *Chapter:
		n.Introduction = appendText(n.Introduction, content)
		if err := sw.store.UpdateChapter(ctx, n); err != nil {
			return fmt.Errorf("update chapter %d: %w", n.ID, err)
		}
	case *Extract:
		n.Text = content
		if err := sw.store.UpdateExtract(ctx, n); err != nil {
			return fmt.Errorf("update extract %d: %w", n.ID, err)
		}
	default:
		return fmt.Errorf("no open node at depth %d", d)
	}
	return nil
}

// openNode creates and persists a new node at depth d, parented to whichever
// ancestor is currently open. Counters strictly deeper than d restart.
func (sw *sweep) openNode(ctx context.Context, t Title, d int) error {
	for j := d + 1; j < len(sw.open); j++ {
		sw.open[j] = nil
		sw.counters[j] = 0
	}
	sw.counters[d]++

	switch kindAtDepth(sw.shape, d) {
	case kindPart:
		p := &Part{
			TutorialID:         sw.tut.ID,
			Title:              t.Text,
			Slug:               Slugify(t.Text),
			PositionInTutorial: sw.counters[d],
		}
		if err := sw.store.CreatePart(ctx, p); err != nil {
			return fmt.Errorf("create part %q: %w", t.Text, err)
		}
		sw.open[d] = p

	case kindChapter:
		parent := sw.implicitPart
		if d > 0 {
			parent = sw.open[d-1].(*Part)
		}
		c := &Chapter{
			PartID:         &parent.ID,
			Title:          t.Text,
			Slug:           Slugify(t.Text),
			PositionInPart: sw.counters[d],
		}
		if err := sw.store.CreateChapter(ctx, c); err != nil {
			return fmt.Errorf("create chapter %q: %w", t.Text, err)
		}
		sw.open[d] = c

	case kindExtract:
		parent := sw.implicitChapter
		if d > 0 {
			parent = sw.open[d-1].(*Chapter)
		}
		e := &Extract{
			ChapterID:         parent.ID,
			Title:             t.Text,
			PositionInChapter: sw.counters[d],
		}
		if err := sw.store.CreateExtract(ctx, e); err != nil {
			return fmt.Errorf("create extract %q: %w", t.Text, err)
		}
		sw.open[d] = e
	}
	return nil
}

func levelIndex(levels []int, level int) int {
	for i, l := range levels {
		if l == level {
			return i
		}
	}
	return -1
}

// joinLines returns the trimmed text of lines[from:to], clamped to bounds.
func joinLines(lines []string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[from:to], "\n"))
}

func appendText(existing, more string) string {
	if more == "" {
		return existing
	}
	if existing == "" {
		return more
	}
	return existing + "\n\n" + more
}
