package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/avergnaud/atelier/internal/content"
)

// ContentStore implements content.Store on gorm. Deletes cascade to
// descendants explicitly so sqlite deployments without foreign-key
// enforcement stay consistent.
type ContentStore struct {
	db *gorm.DB
}

func NewContentStore(db *gorm.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) CreateTutorial(ctx context.Context, t *content.Tutorial) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *ContentStore) UpdateTutorial(ctx context.Context, t *content.Tutorial) error {
	return s.db.WithContext(ctx).Omit("Authors").Save(t).Error
}

func (s *ContentStore) GetTutorial(ctx context.Context, id int64) (*content.Tutorial, error) {
	var t content.Tutorial
	err := s.db.WithContext(ctx).
		Preload("Authors", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&t, id).Error
	if err != nil {
		return nil, fmt.Errorf("tutorial %d: %w", id, err)
	}
	return &t, nil
}

func (s *ContentStore) DeleteTutorial(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parts []content.Part
		if err := tx.Where("tutorial_id = ?", id).Find(&parts).Error; err != nil {
			return err
		}
		for _, p := range parts {
			if err := deletePartTx(tx, p.ID); err != nil {
				return err
			}
		}
		var chapters []content.Chapter
		if err := tx.Where("tutorial_id = ?", id).Find(&chapters).Error; err != nil {
			return err
		}
		for _, c := range chapters {
			if err := deleteChapterTx(tx, c.ID); err != nil {
				return err
			}
		}
		if err := tx.Where("tutorial_id = ?", id).Delete(&content.TutorialAuthor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&content.Tutorial{}, id).Error
	})
}

func (s *ContentStore) CreatePart(ctx context.Context, p *content.Part) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ContentStore) UpdatePart(ctx context.Context, p *content.Part) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *ContentStore) GetPart(ctx context.Context, id int64) (*content.Part, error) {
	var p content.Part
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("part %d: %w", id, err)
	}
	return &p, nil
}

func (s *ContentStore) DeletePart(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePartTx(tx, id)
	})
}

func deletePartTx(tx *gorm.DB, id int64) error {
	var chapters []content.Chapter
	if err := tx.Where("part_id = ?", id).Find(&chapters).Error; err != nil {
		return err
	}
	for _, c := range chapters {
		if err := deleteChapterTx(tx, c.ID); err != nil {
			return err
		}
	}
	return tx.Delete(&content.Part{}, id).Error
}

func (s *ContentStore) CreateChapter(ctx context.Context, c *content.Chapter) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *ContentStore) UpdateChapter(ctx context.Context, c *content.Chapter) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *ContentStore) GetChapter(ctx context.Context, id int64) (*content.Chapter, error) {
	var c content.Chapter
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, fmt.Errorf("chapter %d: %w", id, err)
	}
	return &c, nil
}

func (s *ContentStore) DeleteChapter(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteChapterTx(tx, id)
	})
}

func deleteChapterTx(tx *gorm.DB, id int64) error {
	if err := tx.Where("chapter_id = ?", id).Delete(&content.Extract{}).Error; err != nil {
		return err
	}
	return tx.Delete(&content.Chapter{}, id).Error
}

func (s *ContentStore) CreateExtract(ctx context.Context, e *content.Extract) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *ContentStore) UpdateExtract(ctx context.Context, e *content.Extract) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *ContentStore) GetExtract(ctx context.Context, id int64) (*content.Extract, error) {
	var e content.Extract
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, fmt.Errorf("extract %d: %w", id, err)
	}
	return &e, nil
}

func (s *ContentStore) DeleteExtract(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&content.Extract{}, id).Error
}

func (s *ContentStore) PartsOfTutorial(ctx context.Context, tutorialID int64) ([]*content.Part, error) {
	var out []*content.Part
	err := s.db.WithContext(ctx).
		Where("tutorial_id = ?", tutorialID).
		Order("position_in_tutorial ASC").
		Find(&out).Error
	return out, err
}

func (s *ContentStore) ChaptersOfPart(ctx context.Context, partID int64) ([]*content.Chapter, error) {
	var out []*content.Chapter
	err := s.db.WithContext(ctx).
		Where("part_id = ?", partID).
		Order("position_in_part ASC").
		Find(&out).Error
	return out, err
}

func (s *ContentStore) ChaptersOfTutorial(ctx context.Context, tutorialID int64) ([]*content.Chapter, error) {
	var out []*content.Chapter
	err := s.db.WithContext(ctx).
		Where("tutorial_id = ?", tutorialID).
		Order("position_in_tutorial ASC").
		Find(&out).Error
	return out, err
}

func (s *ContentStore) ExtractsOfChapter(ctx context.Context, chapterID int64) ([]*content.Extract, error) {
	var out []*content.Extract
	err := s.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("position_in_chapter ASC").
		Find(&out).Error
	return out, err
}
