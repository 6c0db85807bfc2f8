package model

import "time"

// Thread is a private conversation between a fixed set of members.
type Thread struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"column:title;not null" json:"title"`
	Subtitle string `gorm:"column:subtitle" json:"subtitle"`

	Participants []ThreadParticipant `gorm:"foreignKey:ThreadID" json:"participants,omitempty"`

	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
}

func (Thread) TableName() string { return "pm_thread" }

// ThreadParticipant links a member into a private thread.
type ThreadParticipant struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID int64 `gorm:"column:thread_id;not null;index" json:"thread_id"`
	MemberID int64 `gorm:"column:member_id;not null;index" json:"member_id"`
}

func (ThreadParticipant) TableName() string { return "pm_participant" }

// Message is one private message inside a thread.
type Message struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID int64  `gorm:"column:thread_id;not null;index" json:"thread_id"`
	AuthorID int64  `gorm:"column:author_id;not null;index" json:"author_id"`
	Text     string `gorm:"column:text;type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string { return "pm_message" }
