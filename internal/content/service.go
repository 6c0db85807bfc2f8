package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Service wires the engine's operations to a Store. A per-tutorial mutex
// serializes structural mutations so concurrent moves/deletes cannot break
// the dense-position invariant. Authorization is the caller's concern: the
// acting user is only threaded through for authorship and audit logging.
type Service struct {
	store     Store
	validator SchemaValidator
	importer  *Importer
	log       *slog.Logger

	locks sync.Map // tutorial ID -> *sync.Mutex
}

func NewService(store Store, validator SchemaValidator, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		importer:  NewImporter(store, log),
		log:       log,
	}
}

func (s *Service) Store() Store { return s.store }

func (s *Service) lock(tutorialID int64) func() {
	mu, _ := s.locks.LoadOrStore(tutorialID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Import builds a new tutorial from a raw markdown document.
func (s *Service) Import(ctx context.Context, actor, text string, shape Shape, authors []string) (*Tutorial, error) {
	if len(authors) == 0 && actor != "" {
		authors = []string{actor}
	}
	return s.importer.Import(ctx, SplitLines(text), shape, authors)
}

// Export loads the tree and produces its structured document, validated when
// the service carries a validator.
func (s *Service) Export(ctx context.Context, tutorialID int64) (*Document, error) {
	tree, err := LoadTree(ctx, s.store, tutorialID)
	if err != nil {
		return nil, err
	}
	return ExportTree(tree, s.validator)
}

// Markdown loads the tree and re-emits it as a markdown document.
func (s *Service) Markdown(ctx context.Context, tutorialID int64) (string, error) {
	tree, err := LoadTree(ctx, s.store, tutorialID)
	if err != nil {
		return "", err
	}
	return MarkdownExport(tree), nil
}

func (s *Service) GetTutorial(ctx context.Context, id int64) (*Tutorial, error) {
	return s.store.GetTutorial(ctx, id)
}

// TutorialEdit carries optional field updates; nil fields are untouched.
type TutorialEdit struct {
	Description  *string `json:"description,omitempty"`
	Introduction *string `json:"introduction,omitempty"`
	Conclusion   *string `json:"conclusion,omitempty"`
}

func (s *Service) EditTutorial(ctx context.Context, actor string, id int64, edit TutorialEdit) (*Tutorial, error) {
	unlock := s.lock(id)
	defer unlock()

	tut, err := s.store.GetTutorial(ctx, id)
	if err != nil {
		return nil, err
	}
	if edit.Description != nil {
		tut.Description = *edit.Description
	}
	if edit.Introduction != nil {
		tut.Introduction = *edit.Introduction
	}
	if edit.Conclusion != nil {
		tut.Conclusion = *edit.Conclusion
	}
	if err := s.store.UpdateTutorial(ctx, tut); err != nil {
		return nil, err
	}
	s.audit(actor, "edit_tutorial", id)
	return tut, nil
}

// MovePart re-ranks a part among its tutorial's parts and recomputes every
// chapter's denormalized tutorial position.
func (s *Service) MovePart(ctx context.Context, actor string, partID int64, newPos int) error {
	p, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return err
	}
	unlock := s.lock(p.TutorialID)
	defer unlock()

	siblings, err := s.store.PartsOfTutorial(ctx, p.TutorialID)
	if err != nil {
		return err
	}
	node := findPart(siblings, partID)
	if node == nil {
		return fmt.Errorf("part %d not among siblings", partID)
	}
	changed, err := Move(node, newPos, siblings)
	if err != nil {
		return err
	}
	for _, c := range changed {
		if err := s.store.UpdatePart(ctx, c); err != nil {
			return err
		}
	}
	if err := RecomputeChapterPositions(ctx, s.store, p.TutorialID); err != nil {
		return err
	}
	s.audit(actor, "move_part", partID)
	return s.touch(ctx, p.TutorialID)
}

// MoveChapter re-ranks a chapter within its part (or among a tutorial's own
// chapters for the small shape).
func (s *Service) MoveChapter(ctx context.Context, actor string, chapterID int64, newPos int) error {
	c, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	tutorialID, err := s.chapterTutorialID(ctx, c)
	if err != nil {
		return err
	}
	unlock := s.lock(tutorialID)
	defer unlock()

	var siblings []*Chapter
	if c.PartID != nil {
		siblings, err = s.store.ChaptersOfPart(ctx, *c.PartID)
	} else {
		siblings, err = s.store.ChaptersOfTutorial(ctx, tutorialID)
	}
	if err != nil {
		return err
	}
	node := findChapter(siblings, chapterID)
	if node == nil {
		return fmt.Errorf("chapter %d not among siblings", chapterID)
	}
	changed, err := Move(node, newPos, siblings)
	if err != nil {
		return err
	}
	for _, ch := range changed {
		if err := s.store.UpdateChapter(ctx, ch); err != nil {
			return err
		}
	}
	if err := RecomputeChapterPositions(ctx, s.store, tutorialID); err != nil {
		return err
	}
	s.audit(actor, "move_chapter", chapterID)
	return s.touch(ctx, tutorialID)
}

// MoveExtract re-ranks an extract within its chapter.
func (s *Service) MoveExtract(ctx context.Context, actor string, extractID int64, newPos int) error {
	e, err := s.store.GetExtract(ctx, extractID)
	if err != nil {
		return err
	}
	ch, err := s.store.GetChapter(ctx, e.ChapterID)
	if err != nil {
		return err
	}
	tutorialID, err := s.chapterTutorialID(ctx, ch)
	if err != nil {
		return err
	}
	unlock := s.lock(tutorialID)
	defer unlock()

	siblings, err := s.store.ExtractsOfChapter(ctx, e.ChapterID)
	if err != nil {
		return err
	}
	node := findExtract(siblings, extractID)
	if node == nil {
		return fmt.Errorf("extract %d not among siblings", extractID)
	}
	changed, err := Move(node, newPos, siblings)
	if err != nil {
		return err
	}
	for _, x := range changed {
		if err := s.store.UpdateExtract(ctx, x); err != nil {
			return err
		}
	}
	s.audit(actor, "move_extract", extractID)
	return s.touch(ctx, tutorialID)
}

// AddChapter appends a chapter at the end of a part.
func (s *Service) AddChapter(ctx context.Context, actor string, partID int64, title string) (*Chapter, error) {
	p, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(p.TutorialID)
	defer unlock()

	siblings, err := s.store.ChaptersOfPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	c := &Chapter{
		PartID:         &p.ID,
		Title:          title,
		Slug:           Slugify(title),
		PositionInPart: len(siblings) + 1,
	}
	if err := s.store.CreateChapter(ctx, c); err != nil {
		return nil, err
	}
	if err := RecomputeChapterPositions(ctx, s.store, p.TutorialID); err != nil {
		return nil, err
	}
	s.audit(actor, "add_chapter", c.ID)
	return c, s.touch(ctx, p.TutorialID)
}

// AddExtract appends an extract at the end of a chapter.
func (s *Service) AddExtract(ctx context.Context, actor string, chapterID int64, title, text string) (*Extract, error) {
	ch, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	tutorialID, err := s.chapterTutorialID(ctx, ch)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(tutorialID)
	defer unlock()

	siblings, err := s.store.ExtractsOfChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	e := &Extract{
		ChapterID:         chapterID,
		Title:             title,
		Text:              text,
		PositionInChapter: len(siblings) + 1,
	}
	if err := s.store.CreateExtract(ctx, e); err != nil {
		return nil, err
	}
	s.audit(actor, "add_extract", e.ID)
	return e, s.touch(ctx, tutorialID)
}

// DeletePart removes a part and its descendants, renumbers surviving parts
// and recomputes chapter tutorial positions.
func (s *Service) DeletePart(ctx context.Context, actor string, partID int64) error {
	p, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return err
	}
	unlock := s.lock(p.TutorialID)
	defer unlock()

	if err := s.store.DeletePart(ctx, partID); err != nil {
		return err
	}
	survivors, err := s.store.PartsOfTutorial(ctx, p.TutorialID)
	if err != nil {
		return err
	}
	for _, c := range ShiftAfterDelete(survivors, p.PositionInTutorial) {
		if err := s.store.UpdatePart(ctx, c); err != nil {
			return err
		}
	}
	if err := RecomputeChapterPositions(ctx, s.store, p.TutorialID); err != nil {
		return err
	}
	s.audit(actor, "delete_part", partID)
	return s.touch(ctx, p.TutorialID)
}

// DeleteChapter removes a chapter and its extracts, renumbers surviving
// siblings and recomputes chapter tutorial positions.
func (s *Service) DeleteChapter(ctx context.Context, actor string, chapterID int64) error {
	c, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	tutorialID, err := s.chapterTutorialID(ctx, c)
	if err != nil {
		return err
	}
	unlock := s.lock(tutorialID)
	defer unlock()

	if err := s.store.DeleteChapter(ctx, chapterID); err != nil {
		return err
	}
	var survivors []*Chapter
	if c.PartID != nil {
		survivors, err = s.store.ChaptersOfPart(ctx, *c.PartID)
	} else {
		survivors, err = s.store.ChaptersOfTutorial(ctx, tutorialID)
	}
	if err != nil {
		return err
	}
	for _, sc := range ShiftAfterDelete(survivors, c.PositionInPart) {
		if err := s.store.UpdateChapter(ctx, sc); err != nil {
			return err
		}
	}
	if err := RecomputeChapterPositions(ctx, s.store, tutorialID); err != nil {
		return err
	}
	s.audit(actor, "delete_chapter", chapterID)
	return s.touch(ctx, tutorialID)
}

// DeleteExtract removes an extract and renumbers surviving siblings.
func (s *Service) DeleteExtract(ctx context.Context, actor string, extractID int64) error {
	e, err := s.store.GetExtract(ctx, extractID)
	if err != nil {
		return err
	}
	ch, err := s.store.GetChapter(ctx, e.ChapterID)
	if err != nil {
		return err
	}
	tutorialID, err := s.chapterTutorialID(ctx, ch)
	if err != nil {
		return err
	}
	unlock := s.lock(tutorialID)
	defer unlock()

	if err := s.store.DeleteExtract(ctx, extractID); err != nil {
		return err
	}
	survivors, err := s.store.ExtractsOfChapter(ctx, e.ChapterID)
	if err != nil {
		return err
	}
	for _, se := range ShiftAfterDelete(survivors, e.PositionInChapter) {
		if err := s.store.UpdateExtract(ctx, se); err != nil {
			return err
		}
	}
	s.audit(actor, "delete_extract", extractID)
	return s.touch(ctx, tutorialID)
}

func (s *Service) chapterTutorialID(ctx context.Context, c *Chapter) (int64, error) {
	switch {
	case c.PartID != nil:
		p, err := s.store.GetPart(ctx, *c.PartID)
		if err != nil {
			return 0, err
		}
		return p.TutorialID, nil
	case c.TutorialID != nil:
		return *c.TutorialID, nil
	default:
		return 0, fmt.Errorf("chapter %d: %w", c.ID, ErrOrphanChapter)
	}
}

// touch bumps the tutorial's last-modified timestamp.
func (s *Service) touch(ctx context.Context, tutorialID int64) error {
	tut, err := s.store.GetTutorial(ctx, tutorialID)
	if err != nil {
		return err
	}
	return s.store.UpdateTutorial(ctx, tut)
}

func (s *Service) audit(actor, op string, id int64) {
	if s.log != nil {
		s.log.Info("content operation", "actor", actor, "op", op, "id", id)
	}
}

func findPart(in []*Part, id int64) *Part {
	for _, p := range in {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findChapter(in []*Chapter, id int64) *Chapter {
	for _, c := range in {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func findExtract(in []*Extract, id int64) *Extract {
	for _, e := range in {
		if e.ID == id {
			return e
		}
	}
	return nil
}
