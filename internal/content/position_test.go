package content

import (
	"errors"
	"testing"
)

func extracts(n int) []*Extract {
	out := make([]*Extract, n)
	for i := range out {
		out[i] = &Extract{ID: int64(i + 1), PositionInChapter: i + 1}
	}
	return out
}

func positions(in []*Extract) []int {
	out := make([]int, len(in))
	for i, e := range in {
		out[i] = e.PositionInChapter
	}
	return out
}

func assertDense(t *testing.T, in []*Extract) {
	t.Helper()
	seen := make(map[int]bool)
	for _, e := range in {
		p := e.PositionInChapter
		if p < 1 || p > len(in) || seen[p] {
			t.Fatalf("positions not a dense 1..%d sequence: %v", len(in), positions(in))
		}
		seen[p] = true
	}
}

func TestMove_TowardFront(t *testing.T) {
	sibs := extracts(5)
	changed, err := Move(sibs[2], 1, sibs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Moved extract lands at 1, former 1 and 2 shift to 2 and 3, 4 and 5 untouched.
	want := []int{2, 3, 1, 4, 5}
	for i, w := range want {
		if sibs[i].PositionInChapter != w {
			t.Errorf("sibling %d: expected position %d, got %d", i, w, sibs[i].PositionInChapter)
		}
	}
	if len(changed) != 3 {
		t.Errorf("expected 3 changed nodes, got %d", len(changed))
	}
	assertDense(t, sibs)
}

func TestMove_TowardBack(t *testing.T) {
	sibs := extracts(5)
	if _, err := Move(sibs[1], 4, sibs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 4, 2, 3, 5}
	for i, w := range want {
		if sibs[i].PositionInChapter != w {
			t.Errorf("sibling %d: expected position %d, got %d", i, w, sibs[i].PositionInChapter)
		}
	}
	assertDense(t, sibs)
}

func TestMove_SamePositionIsNoop(t *testing.T) {
	sibs := extracts(3)
	changed, err := Move(sibs[1], 2, sibs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != nil {
		t.Errorf("expected no changed nodes, got %v", changed)
	}
	for i, e := range sibs {
		if e.PositionInChapter != i+1 {
			t.Errorf("positions should be untouched, got %v", positions(sibs))
			break
		}
	}
}

func TestMove_InvalidPosition(t *testing.T) {
	sibs := extracts(3)
	for _, bad := range []int{0, -1, 4} {
		_, err := Move(sibs[0], bad, sibs)
		var inv *InvalidPositionError
		if !errors.As(err, &inv) {
			t.Fatalf("position %d: expected InvalidPositionError, got %v", bad, err)
		}
		if inv.Requested != bad || inv.Count != 3 {
			t.Errorf("unexpected error fields: %+v", inv)
		}
	}
}

func TestMove_DensityHoldsAfterSequence(t *testing.T) {
	sibs := extracts(7)
	byPos := func(p int) *Extract {
		for _, e := range sibs {
			if e.PositionInChapter == p {
				return e
			}
		}
		t.Fatalf("no sibling at position %d", p)
		return nil
	}
	for _, mv := range []struct{ from, to int }{
		{3, 7}, {1, 4}, {7, 2}, {5, 5}, {2, 6}, {6, 1},
	} {
		if _, err := Move(byPos(mv.from), mv.to, sibs); err != nil {
			t.Fatalf("move %d->%d: %v", mv.from, mv.to, err)
		}
		assertDense(t, sibs)
	}
}

func TestMove_WorksForPartsAndChapters(t *testing.T) {
	parts := []*Part{
		{ID: 1, PositionInTutorial: 1},
		{ID: 2, PositionInTutorial: 2},
		{ID: 3, PositionInTutorial: 3},
	}
	if _, err := Move(parts[0], 3, parts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts[0].PositionInTutorial != 3 || parts[1].PositionInTutorial != 1 || parts[2].PositionInTutorial != 2 {
		t.Errorf("unexpected part positions: %d %d %d",
			parts[0].PositionInTutorial, parts[1].PositionInTutorial, parts[2].PositionInTutorial)
	}

	chapters := []*Chapter{
		{ID: 1, PositionInPart: 1},
		{ID: 2, PositionInPart: 2},
	}
	if _, err := Move(chapters[1], 1, chapters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chapters[1].PositionInPart != 1 || chapters[0].PositionInPart != 2 {
		t.Errorf("unexpected chapter positions: %d %d", chapters[0].PositionInPart, chapters[1].PositionInPart)
	}
}

func TestShiftAfterDelete(t *testing.T) {
	// Siblings at 1,3,4,5 after the node at 2 was removed.
	sibs := []*Extract{
		{ID: 1, PositionInChapter: 1},
		{ID: 3, PositionInChapter: 3},
		{ID: 4, PositionInChapter: 4},
		{ID: 5, PositionInChapter: 5},
	}
	changed := ShiftAfterDelete(sibs, 2)
	if len(changed) != 3 {
		t.Fatalf("expected 3 changed nodes, got %d", len(changed))
	}
	want := []int{1, 2, 3, 4}
	for i, w := range want {
		if sibs[i].PositionInChapter != w {
			t.Errorf("sibling %d: expected position %d, got %d", i, w, sibs[i].PositionInChapter)
		}
	}
}
