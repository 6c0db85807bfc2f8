// Package content implements the hierarchical tutorial engine: markdown
// import into a part/chapter/extract tree, the reciprocal export back to
// structured documents and markdown, and sibling position maintenance.
package content

import "time"

// Shape fixes the depth of a tutorial's content tree at creation time.
type Shape string

const (
	ShapeSmall  Shape = "small"  // extracts under one implicit chapter
	ShapeMedium Shape = "medium" // chapters under one implicit part
	ShapeBig    Shape = "big"    // explicit parts, chapters, extracts
)

// Depth returns the number of structural levels below the document title.
func (s Shape) Depth() int {
	switch s {
	case ShapeSmall:
		return 1
	case ShapeMedium:
		return 2
	case ShapeBig:
		return 3
	}
	return 0
}

// Valid reports whether s is one of the three known shapes.
func (s Shape) Valid() bool {
	return s.Depth() > 0
}

// Tutorial is the root of an authored work.
type Tutorial struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string `gorm:"column:title;not null" json:"title"`
	Slug         string `gorm:"column:slug;not null;index" json:"slug"`
	Description  string `gorm:"column:description" json:"description"`
	Shape        Shape  `gorm:"column:shape;not null" json:"shape"`
	Introduction string `gorm:"column:introduction;type:text" json:"introduction"`
	Conclusion   string `gorm:"column:conclusion;type:text" json:"conclusion"`

	Authors []TutorialAuthor `gorm:"foreignKey:TutorialID" json:"authors,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Tutorial) TableName() string { return "tutorial" }

// TutorialAuthor is one entry in a tutorial's ordered author list.
type TutorialAuthor struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TutorialID int64  `gorm:"column:tutorial_id;not null;index" json:"tutorial_id"`
	Username   string `gorm:"column:username;not null" json:"username"`
	Position   int    `gorm:"column:position;not null" json:"position"`
	MemberID   *int64 `gorm:"column:member_id;index" json:"member_id,omitempty"`
}

func (TutorialAuthor) TableName() string { return "tutorial_author" }

// Part is a top-level division of a big tutorial (or the implicit container
// of a medium one; its title is empty in that case).
type Part struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TutorialID         int64  `gorm:"column:tutorial_id;not null;index" json:"tutorial_id"`
	Title              string `gorm:"column:title" json:"title"`
	Slug               string `gorm:"column:slug" json:"slug"`
	Introduction       string `gorm:"column:introduction;type:text" json:"introduction"`
	Conclusion         string `gorm:"column:conclusion;type:text" json:"conclusion"`
	PositionInTutorial int    `gorm:"column:position_in_tutorial;not null" json:"position_in_tutorial"`
}

func (Part) TableName() string { return "part" }

// Chapter belongs to exactly one part (medium/big) or directly to a tutorial
// (small). A chapter bound to neither is corrupt; see ErrOrphanChapter.
type Chapter struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PartID       *int64 `gorm:"column:part_id;index" json:"part_id,omitempty"`
	TutorialID   *int64 `gorm:"column:tutorial_id;index" json:"tutorial_id,omitempty"`
	Title        string `gorm:"column:title" json:"title"`
	Slug         string `gorm:"column:slug" json:"slug"`
	Introduction string `gorm:"column:introduction;type:text" json:"introduction"`
	Conclusion   string `gorm:"column:conclusion;type:text" json:"conclusion"`

	PositionInPart int `gorm:"column:position_in_part;not null" json:"position_in_part"`
	// Denormalized rank across the whole tutorial, used for pagination.
	// Recomputed whenever part ordering changes; see RecomputeChapterPositions.
	PositionInTutorial int `gorm:"column:position_in_tutorial;not null" json:"position_in_tutorial"`
}

func (Chapter) TableName() string { return "chapter" }

// Extract is a leaf section of prose inside a chapter.
type Extract struct {
	ID                int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ChapterID         int64  `gorm:"column:chapter_id;not null;index" json:"chapter_id"`
	Title             string `gorm:"column:title;not null" json:"title"`
	Text              string `gorm:"column:text;type:text" json:"text"`
	PositionInChapter int    `gorm:"column:position_in_chapter;not null" json:"position_in_chapter"`
}

func (Extract) TableName() string { return "extract" }

// Position / SetPosition expose each model's sibling rank so the generic
// Move routine can operate on all three sibling-ordering contexts.

func (p *Part) Position() int     { return p.PositionInTutorial }
func (p *Part) SetPosition(n int) { p.PositionInTutorial = n }

func (c *Chapter) Position() int     { return c.PositionInPart }
func (c *Chapter) SetPosition(n int) { c.PositionInPart = n }

func (e *Extract) Position() int     { return e.PositionInChapter }
func (e *Extract) SetPosition(n int) { e.PositionInChapter = n }
