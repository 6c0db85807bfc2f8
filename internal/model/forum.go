package model

import "time"

// Forum is a category holding discussion topics.
type Forum struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"column:title;not null" json:"title"`
	Slug     string `gorm:"column:slug;not null;index" json:"slug"`
	Subtitle string `gorm:"column:subtitle" json:"subtitle"`
	Position int    `gorm:"column:position;not null" json:"position"`
}

func (Forum) TableName() string { return "forum" }

// Topic is one discussion thread inside a forum.
type Topic struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ForumID  int64  `gorm:"column:forum_id;not null;index" json:"forum_id"`
	AuthorID int64  `gorm:"column:author_id;not null;index" json:"author_id"`
	Title    string `gorm:"column:title;not null" json:"title"`
	Subtitle string `gorm:"column:subtitle" json:"subtitle"`

	IsSolved bool `gorm:"column:is_solved;not null;default:false" json:"is_solved"`
	IsLocked bool `gorm:"column:is_locked;not null;default:false" json:"is_locked"`
	IsSticky bool `gorm:"column:is_sticky;not null;default:false" json:"is_sticky"`

	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	LastPostAt time.Time `gorm:"index" json:"last_post_at"`
}

func (Topic) TableName() string { return "topic" }

// Post is a single message in a topic. Text is stored as markdown and
// rendered to HTML on read.
type Post struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TopicID  int64  `gorm:"column:topic_id;not null;index" json:"topic_id"`
	AuthorID int64  `gorm:"column:author_id;not null;index" json:"author_id"`
	Text     string `gorm:"column:text;type:text;not null" json:"text"`

	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func (Post) TableName() string { return "post" }
