// Package model holds the community-side entities: members, forums, private
// messages and galleries.
package model

import "time"

// Member is a registered user's public profile. Credentials and sessions are
// handled upstream; this record is what the platform itself knows.
type Member struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email     string `gorm:"column:email;not null" json:"-"`
	Biography string `gorm:"column:biography;type:text" json:"biography"`
	Signature string `gorm:"column:signature;type:text" json:"signature"`
	Site      string `gorm:"column:site" json:"site,omitempty"`

	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	LastVisit time.Time `json:"last_visit"`
}

func (Member) TableName() string { return "member" }
