package content

import (
	"context"
	"errors"
	"testing"
)

func importDoc(t *testing.T, store Store, text string, shape Shape, authors ...string) *Tutorial {
	t.Helper()
	imp := NewImporter(store, nil)
	tut, err := imp.Import(context.Background(), SplitLines(text), shape, authors)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	return tut
}

func TestImport_BigConcrete(t *testing.T) {
	input := `# My Tutorial
Intro text.
## Part One
Part intro.
### Chapter A
Chapter intro.
#### Extract 1
Extract body.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeBig, "alice")
	ctx := context.Background()

	if tut.Title != "My Tutorial" {
		t.Errorf("expected title %q, got %q", "My Tutorial", tut.Title)
	}
	if tut.Introduction != "Intro text." {
		t.Errorf("expected introduction %q, got %q", "Intro text.", tut.Introduction)
	}

	parts, err := store.PartsOfTutorial(ctx, tut.ID)
	if err != nil || len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d (err=%v)", len(parts), err)
	}
	p := parts[0]
	if p.Title != "Part One" || p.PositionInTutorial != 1 || p.Introduction != "Part intro." {
		t.Errorf("unexpected part: %+v", p)
	}

	chapters, err := store.ChaptersOfPart(ctx, p.ID)
	if err != nil || len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d (err=%v)", len(chapters), err)
	}
	c := chapters[0]
	if c.Title != "Chapter A" || c.PositionInPart != 1 || c.Introduction != "Chapter intro." {
		t.Errorf("unexpected chapter: %+v", c)
	}

	xs, err := store.ExtractsOfChapter(ctx, c.ID)
	if err != nil || len(xs) != 1 {
		t.Fatalf("expected 1 extract, got %d (err=%v)", len(xs), err)
	}
	e := xs[0]
	if e.Title != "Extract 1" || e.PositionInChapter != 1 || e.Text != "Extract body." {
		t.Errorf("unexpected extract: %+v", e)
	}
}

func TestImport_OnlyTopTitle(t *testing.T) {
	input := `# Lonely
Everything below the title
is introduction text.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeBig)
	ctx := context.Background()

	if tut.Introduction != "Everything below the title\nis introduction text." {
		t.Errorf("unexpected introduction: %q", tut.Introduction)
	}
	parts, _ := store.PartsOfTutorial(ctx, tut.ID)
	if len(parts) != 0 {
		t.Errorf("expected no parts, got %d", len(parts))
	}
}

func TestImport_SmallShape(t *testing.T) {
	input := `# Quick Guide
Guide intro.
## Step One
Do the first thing.
## Step Two
Do the second thing.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeSmall)
	ctx := context.Background()

	chapters, err := store.ChaptersOfTutorial(ctx, tut.ID)
	if err != nil || len(chapters) != 1 {
		t.Fatalf("expected exactly one implicit chapter, got %d (err=%v)", len(chapters), err)
	}
	implicit := chapters[0]
	if implicit.Title != "" {
		t.Errorf("implicit chapter should have no title, got %q", implicit.Title)
	}
	if implicit.PartID != nil {
		t.Error("implicit chapter must be tutorial-bound, not part-bound")
	}

	xs, _ := store.ExtractsOfChapter(ctx, implicit.ID)
	if len(xs) != 2 {
		t.Fatalf("expected 2 extracts, got %d", len(xs))
	}
	if xs[0].Title != "Step One" || xs[0].PositionInChapter != 1 || xs[0].Text != "Do the first thing." {
		t.Errorf("unexpected first extract: %+v", xs[0])
	}
	if xs[1].Title != "Step Two" || xs[1].PositionInChapter != 2 || xs[1].Text != "Do the second thing." {
		t.Errorf("unexpected second extract: %+v", xs[1])
	}
	if tut.Introduction != "Guide intro." {
		t.Errorf("unexpected introduction: %q", tut.Introduction)
	}
}

func TestImport_MediumShape(t *testing.T) {
	input := `# Course
Course intro.
## Chapter One
First chapter intro.
### Lesson A
Lesson A text.
### Lesson B
Lesson B text.
## Chapter Two
Second chapter intro.
### Lesson C
Lesson C text.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeMedium)
	ctx := context.Background()

	parts, _ := store.PartsOfTutorial(ctx, tut.ID)
	if len(parts) != 1 {
		t.Fatalf("expected exactly one implicit part, got %d", len(parts))
	}
	if parts[0].Title != "" || parts[0].PositionInTutorial != 1 {
		t.Errorf("unexpected implicit part: %+v", parts[0])
	}

	chapters, _ := store.ChaptersOfPart(ctx, parts[0].ID)
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Chapter One" || chapters[0].PositionInPart != 1 {
		t.Errorf("unexpected chapter: %+v", chapters[0])
	}
	if chapters[1].Title != "Chapter Two" || chapters[1].PositionInPart != 2 {
		t.Errorf("unexpected chapter: %+v", chapters[1])
	}

	xs, _ := store.ExtractsOfChapter(ctx, chapters[0].ID)
	if len(xs) != 2 || xs[0].Title != "Lesson A" || xs[1].Title != "Lesson B" {
		t.Fatalf("unexpected extracts of first chapter: %+v", xs)
	}
	xs2, _ := store.ExtractsOfChapter(ctx, chapters[1].ID)
	if len(xs2) != 1 || xs2[0].Title != "Lesson C" || xs2[0].PositionInChapter != 1 {
		t.Fatalf("extract positions must restart under each chapter: %+v", xs2)
	}
}

func TestImport_PositionCountersRestartPerParent(t *testing.T) {
	input := `# Big One
Intro.
## P1
P1 intro.
### C1
C1 intro.
#### E1
E1 body.
#### E2
E2 body.
### C2
C2 intro.
#### E3
E3 body.
## P2
P2 intro.
### C3
C3 intro.
#### E4
E4 body.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeBig)
	ctx := context.Background()

	parts, _ := store.PartsOfTutorial(ctx, tut.ID)
	if len(parts) != 2 || parts[0].PositionInTutorial != 1 || parts[1].PositionInTutorial != 2 {
		t.Fatalf("unexpected parts: %+v", parts)
	}

	c1s, _ := store.ChaptersOfPart(ctx, parts[0].ID)
	if len(c1s) != 2 || c1s[0].PositionInPart != 1 || c1s[1].PositionInPart != 2 {
		t.Fatalf("unexpected chapters of P1: %+v", c1s)
	}
	c2s, _ := store.ChaptersOfPart(ctx, parts[1].ID)
	if len(c2s) != 1 || c2s[0].PositionInPart != 1 {
		t.Fatalf("chapter positions must restart under P2: %+v", c2s)
	}

	// E3 is the first extract of C2; its counter restarted.
	xs, _ := store.ExtractsOfChapter(ctx, c1s[1].ID)
	if len(xs) != 1 || xs[0].Title != "E3" || xs[0].PositionInChapter != 1 {
		t.Fatalf("unexpected extracts of C2: %+v", xs)
	}
}

func TestImport_InBodyHeadingsFoldIntoText(t *testing.T) {
	// The ##### heading is below levels-to-match for a big tutorial and must
	// stay inside the extract's body.
	input := `# Doc
Intro.
## P
P intro.
### C
C intro.
#### E
Body before.
##### In-body heading
Body after.`

	store := NewMemoryStore()
	tut := importDoc(t, store, input, ShapeBig)
	ctx := context.Background()

	parts, _ := store.PartsOfTutorial(ctx, tut.ID)
	chapters, _ := store.ChaptersOfPart(ctx, parts[0].ID)
	xs, _ := store.ExtractsOfChapter(ctx, chapters[0].ID)
	if len(xs) != 1 {
		t.Fatalf("expected 1 extract, got %d", len(xs))
	}
	want := "Body before.\n##### In-body heading\nBody after."
	if xs[0].Text != want {
		t.Errorf("expected body %q, got %q", want, xs[0].Text)
	}
}

func TestImport_ValidationFailsBeforeAnyMutation(t *testing.T) {
	input := `# Doc
Intro.
## P
#### Skipped level`

	store := NewMemoryStore()
	imp := NewImporter(store, nil)
	_, err := imp.Import(context.Background(), SplitLines(input), ShapeBig, nil)
	var inc *InvalidLevelIncreaseError
	if !errors.As(err, &inc) {
		t.Fatalf("expected InvalidLevelIncreaseError, got %v", err)
	}
	if len(store.tutorials) != 0 || len(store.parts) != 0 {
		t.Error("validation failure must precede all persistence")
	}
}

func TestImport_NoTitles(t *testing.T) {
	store := NewMemoryStore()
	imp := NewImporter(store, nil)
	_, err := imp.Import(context.Background(), SplitLines("just prose\nno headings"), ShapeSmall, nil)
	if !errors.Is(err, ErrNoTitleFound) {
		t.Fatalf("expected ErrNoTitleFound, got %v", err)
	}
}

func TestImport_AuthorsOrdered(t *testing.T) {
	store := NewMemoryStore()
	tut := importDoc(t, store, "# T\nintro", ShapeSmall, "alice", "bob")
	if len(tut.Authors) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(tut.Authors))
	}
	if tut.Authors[0].Username != "alice" || tut.Authors[0].Position != 1 {
		t.Errorf("unexpected first author: %+v", tut.Authors[0])
	}
	if tut.Authors[1].Username != "bob" || tut.Authors[1].Position != 2 {
		t.Errorf("unexpected second author: %+v", tut.Authors[1])
	}
}

func TestImport_UnknownShape(t *testing.T) {
	imp := NewImporter(NewMemoryStore(), nil)
	if _, err := imp.Import(context.Background(), []string{"# T"}, Shape("huge"), nil); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}
