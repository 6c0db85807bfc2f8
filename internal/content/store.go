package content

import (
	"context"
	"errors"
	"fmt"
)

// ErrOrphanChapter marks a chapter bound to neither a part nor a tutorial.
// This is data corruption, not user error.
var ErrOrphanChapter = errors.New("chapter belongs to neither a part nor a tutorial")

// ErrOrphanPart marks a part whose tutorial no longer exists.
var ErrOrphanPart = errors.New("part belongs to no tutorial")

// Store is the persistence collaborator of the engine. Each Create assigns a
// persistent identity; the engine saves once per node transition and expects
// subsequent reads within the same sweep to reflect prior writes. The list
// accessors return siblings ordered by their position field ascending.
type Store interface {
	CreateTutorial(ctx context.Context, t *Tutorial) error
	UpdateTutorial(ctx context.Context, t *Tutorial) error
	GetTutorial(ctx context.Context, id int64) (*Tutorial, error)
	DeleteTutorial(ctx context.Context, id int64) error

	CreatePart(ctx context.Context, p *Part) error
	UpdatePart(ctx context.Context, p *Part) error
	GetPart(ctx context.Context, id int64) (*Part, error)
	DeletePart(ctx context.Context, id int64) error

	CreateChapter(ctx context.Context, c *Chapter) error
	UpdateChapter(ctx context.Context, c *Chapter) error
	GetChapter(ctx context.Context, id int64) (*Chapter, error)
	DeleteChapter(ctx context.Context, id int64) error

	CreateExtract(ctx context.Context, e *Extract) error
	UpdateExtract(ctx context.Context, e *Extract) error
	GetExtract(ctx context.Context, id int64) (*Extract, error)
	DeleteExtract(ctx context.Context, id int64) error

	PartsOfTutorial(ctx context.Context, tutorialID int64) ([]*Part, error)
	ChaptersOfPart(ctx context.Context, partID int64) ([]*Chapter, error)
	ChaptersOfTutorial(ctx context.Context, tutorialID int64) ([]*Chapter, error)
	ExtractsOfChapter(ctx context.Context, chapterID int64) ([]*Extract, error)
}

// Tree is a fully loaded tutorial. Exactly one of Parts (medium/big) or
// Chapters (small) is populated, mirroring the shape's ownership rule.
type Tree struct {
	Tutorial *Tutorial
	Parts    []*PartNode
	Chapters []*ChapterNode
}

// PartNode is a part with its ordered chapters.
type PartNode struct {
	Part     *Part
	Chapters []*ChapterNode
}

// ChapterNode is a chapter with its ordered extracts.
type ChapterNode struct {
	Chapter  *Chapter
	Extracts []*Extract
}

// LoadTree fetches a tutorial and all its descendants, depth-first, each
// sibling group ordered by position.
func LoadTree(ctx context.Context, store Store, tutorialID int64) (*Tree, error) {
	tut, err := store.GetTutorial(ctx, tutorialID)
	if err != nil {
		return nil, fmt.Errorf("load tutorial %d: %w", tutorialID, err)
	}
	tree := &Tree{Tutorial: tut}

	if tut.Shape == ShapeSmall {
		chapters, err := store.ChaptersOfTutorial(ctx, tutorialID)
		if err != nil {
			return nil, fmt.Errorf("load chapters of tutorial %d: %w", tutorialID, err)
		}
		for _, c := range chapters {
			node, err := loadChapterNode(ctx, store, c)
			if err != nil {
				return nil, err
			}
			tree.Chapters = append(tree.Chapters, node)
		}
		return tree, nil
	}

	parts, err := store.PartsOfTutorial(ctx, tutorialID)
	if err != nil {
		return nil, fmt.Errorf("load parts of tutorial %d: %w", tutorialID, err)
	}
	for _, p := range parts {
		pn := &PartNode{Part: p}
		chapters, err := store.ChaptersOfPart(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("load chapters of part %d: %w", p.ID, err)
		}
		for _, c := range chapters {
			node, err := loadChapterNode(ctx, store, c)
			if err != nil {
				return nil, err
			}
			pn.Chapters = append(pn.Chapters, node)
		}
		tree.Parts = append(tree.Parts, pn)
	}
	return tree, nil
}

func loadChapterNode(ctx context.Context, store Store, c *Chapter) (*ChapterNode, error) {
	if c.PartID == nil && c.TutorialID == nil {
		return nil, fmt.Errorf("chapter %d: %w", c.ID, ErrOrphanChapter)
	}
	extracts, err := store.ExtractsOfChapter(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load extracts of chapter %d: %w", c.ID, err)
	}
	return &ChapterNode{Chapter: c, Extracts: extracts}, nil
}

// RecomputeChapterPositions rewrites every chapter's denormalized
// position_in_tutorial by walking parts in tutorial order and chapters within
// each part in part order, accumulating a running counter. Tutorial-bound
// chapters (small shape) are walked after any parts, in their own order.
func RecomputeChapterPositions(ctx context.Context, store Store, tutorialID int64) error {
	counter := 0

	parts, err := store.PartsOfTutorial(ctx, tutorialID)
	if err != nil {
		return fmt.Errorf("recompute positions: %w", err)
	}
	for _, p := range parts {
		chapters, err := store.ChaptersOfPart(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("recompute positions: %w", err)
		}
		for _, c := range chapters {
			counter++
			if c.PositionInTutorial == counter {
				continue
			}
			c.PositionInTutorial = counter
			if err := store.UpdateChapter(ctx, c); err != nil {
				return fmt.Errorf("recompute positions: update chapter %d: %w", c.ID, err)
			}
		}
	}

	chapters, err := store.ChaptersOfTutorial(ctx, tutorialID)
	if err != nil {
		return fmt.Errorf("recompute positions: %w", err)
	}
	for _, c := range chapters {
		counter++
		if c.PositionInTutorial == counter {
			continue
		}
		c.PositionInTutorial = counter
		if err := store.UpdateChapter(ctx, c); err != nil {
			return fmt.Errorf("recompute positions: update chapter %d: %w", c.ID, err)
		}
	}
	return nil
}
