package content

import (
	"context"
	"errors"
	"testing"
)

// fourChapterDoc has one part with four chapters of one extract each, plus a
// second part, so chapter tutorial-positions span parts.
const fourChapterDoc = `# T
intro
## P1
p1 intro
### C1
c1 intro
#### E1
e1
### C2
c2 intro
#### E2
e2
### C3
c3 intro
#### E3
e3
### C4
c4 intro
#### E4
e4
## P2
p2 intro
### C5
c5 intro
#### E5
e5`

func newServiceWithDoc(t *testing.T, text string, shape Shape) (*Service, *Tutorial) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store, BasicValidator{}, nil)
	tut, err := svc.Import(context.Background(), "alice", text, shape, nil)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return svc, tut
}

func chapterTitlesOfPart(t *testing.T, svc *Service, partID int64) []string {
	t.Helper()
	chapters, err := svc.Store().ChaptersOfPart(context.Background(), partID)
	if err != nil {
		t.Fatalf("chapters of part: %v", err)
	}
	out := make([]string, len(chapters))
	for i, c := range chapters {
		out[i] = c.Title
	}
	return out
}

func TestService_DeleteChapterRenumbersAndRecomputes(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	chapters, _ := svc.Store().ChaptersOfPart(ctx, parts[0].ID)
	if len(chapters) != 4 {
		t.Fatalf("expected 4 chapters in P1, got %d", len(chapters))
	}

	// Delete the chapter at position_in_part=2 of 4.
	if err := svc.DeleteChapter(ctx, "alice", chapters[1].ID); err != nil {
		t.Fatalf("delete chapter: %v", err)
	}

	survivors, _ := svc.Store().ChaptersOfPart(ctx, parts[0].ID)
	if len(survivors) != 3 {
		t.Fatalf("expected 3 surviving chapters, got %d", len(survivors))
	}
	wantTitles := []string{"C1", "C3", "C4"}
	for i, c := range survivors {
		if c.Title != wantTitles[i] || c.PositionInPart != i+1 {
			t.Errorf("survivor %d: expected %s at position %d, got %s at %d",
				i, wantTitles[i], i+1, c.Title, c.PositionInPart)
		}
	}

	// Tutorial-wide chapter positions were recomputed across both parts.
	p2Chapters, _ := svc.Store().ChaptersOfPart(ctx, parts[1].ID)
	if p2Chapters[0].PositionInTutorial != 4 {
		t.Errorf("C5 should now be 4th tutorial-wide, got %d", p2Chapters[0].PositionInTutorial)
	}
	for i, c := range survivors {
		if c.PositionInTutorial != i+1 {
			t.Errorf("chapter %s: expected tutorial position %d, got %d", c.Title, i+1, c.PositionInTutorial)
		}
	}
}

func TestService_MovePartRecomputesChapterPositions(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	if err := svc.MovePart(ctx, "alice", parts[1].ID, 1); err != nil {
		t.Fatalf("move part: %v", err)
	}

	reordered, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	if reordered[0].Title != "P2" || reordered[1].Title != "P1" {
		t.Fatalf("unexpected part order: %s, %s", reordered[0].Title, reordered[1].Title)
	}

	// C5 leads the tutorial now; P1's chapters follow at 2..5.
	p2Chapters, _ := svc.Store().ChaptersOfPart(ctx, reordered[0].ID)
	if p2Chapters[0].PositionInTutorial != 1 {
		t.Errorf("C5 should be first tutorial-wide, got %d", p2Chapters[0].PositionInTutorial)
	}
	p1Chapters, _ := svc.Store().ChaptersOfPart(ctx, reordered[1].ID)
	for i, c := range p1Chapters {
		if c.PositionInTutorial != i+2 {
			t.Errorf("chapter %s: expected tutorial position %d, got %d", c.Title, i+2, c.PositionInTutorial)
		}
	}
}

func TestService_MoveChapterWithinPart(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	chapters, _ := svc.Store().ChaptersOfPart(ctx, parts[0].ID)

	if err := svc.MoveChapter(ctx, "alice", chapters[3].ID, 1); err != nil {
		t.Fatalf("move chapter: %v", err)
	}
	got := chapterTitlesOfPart(t, svc, parts[0].ID)
	want := []string{"C4", "C1", "C2", "C3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected chapter order: %v", got)
		}
	}
}

func TestService_MoveExtractInvalidPosition(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	chapters, _ := svc.Store().ChaptersOfPart(ctx, parts[0].ID)
	xs, _ := svc.Store().ExtractsOfChapter(ctx, chapters[0].ID)

	err := svc.MoveExtract(ctx, "alice", xs[0].ID, 9)
	var inv *InvalidPositionError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidPositionError, got %v", err)
	}
}

func TestService_AddChapterAppends(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	c, err := svc.AddChapter(ctx, "alice", parts[0].ID, "C Extra")
	if err != nil {
		t.Fatalf("add chapter: %v", err)
	}
	if c.PositionInPart != 5 {
		t.Errorf("expected appended chapter at position 5, got %d", c.PositionInPart)
	}
	if c.PositionInTutorial != 5 {
		t.Errorf("expected tutorial position 5, got %d", c.PositionInTutorial)
	}
}

func TestService_AddExtractAppends(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	chapters, _ := svc.Store().ChaptersOfPart(ctx, parts[0].ID)

	e, err := svc.AddExtract(ctx, "alice", chapters[0].ID, "E Extra", "more text")
	if err != nil {
		t.Fatalf("add extract: %v", err)
	}
	if e.PositionInChapter != 2 {
		t.Errorf("expected appended extract at position 2, got %d", e.PositionInChapter)
	}
}

func TestService_DeletePartRenumbersSurvivors(t *testing.T) {
	svc, tut := newServiceWithDoc(t, fourChapterDoc, ShapeBig)
	ctx := context.Background()

	parts, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	if err := svc.DeletePart(ctx, "alice", parts[0].ID); err != nil {
		t.Fatalf("delete part: %v", err)
	}
	survivors, _ := svc.Store().PartsOfTutorial(ctx, tut.ID)
	if len(survivors) != 1 || survivors[0].Title != "P2" || survivors[0].PositionInTutorial != 1 {
		t.Fatalf("unexpected survivors: %+v", survivors)
	}
	// P2's chapter leads the tutorial after the cascade.
	chapters, _ := svc.Store().ChaptersOfPart(ctx, survivors[0].ID)
	if chapters[0].PositionInTutorial != 1 {
		t.Errorf("expected tutorial position 1, got %d", chapters[0].PositionInTutorial)
	}
}

func TestService_DeleteExtractRenumbers(t *testing.T) {
	svc, _ := newServiceWithDoc(t, "# G\nintro\n## S1\none\n## S2\ntwo\n## S3\nthree", ShapeSmall)
	ctx := context.Background()

	tut, _ := svc.Store().GetTutorial(ctx, 1)
	chapters, _ := svc.Store().ChaptersOfTutorial(ctx, tut.ID)
	xs, _ := svc.Store().ExtractsOfChapter(ctx, chapters[0].ID)
	if len(xs) != 3 {
		t.Fatalf("expected 3 extracts, got %d", len(xs))
	}

	if err := svc.DeleteExtract(ctx, "alice", xs[1].ID); err != nil {
		t.Fatalf("delete extract: %v", err)
	}
	survivors, _ := svc.Store().ExtractsOfChapter(ctx, chapters[0].ID)
	if len(survivors) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(survivors))
	}
	if survivors[0].Title != "S1" || survivors[0].PositionInChapter != 1 ||
		survivors[1].Title != "S3" || survivors[1].PositionInChapter != 2 {
		t.Errorf("unexpected survivors: %+v %+v", survivors[0], survivors[1])
	}
}

func TestService_OrphanChapterDetected(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	orphan := &Chapter{Title: "lost"}
	if err := store.CreateChapter(ctx, orphan); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.AddExtract(ctx, "alice", orphan.ID, "E", "text")
	if !errors.Is(err, ErrOrphanChapter) {
		t.Fatalf("expected ErrOrphanChapter, got %v", err)
	}
}
