package model

import "time"

// Gallery is a member-owned collection of images.
type Gallery struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID  int64  `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Title    string `gorm:"column:title;not null" json:"title"`
	Slug     string `gorm:"column:slug;not null" json:"slug"`
	Subtitle string `gorm:"column:subtitle" json:"subtitle"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Gallery) TableName() string { return "gallery" }

// Image is the metadata of one uploaded picture. Thumbnailing and physical
// storage are handled outside this service; only the path is recorded.
type Image struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	GalleryID int64  `gorm:"column:gallery_id;not null;index" json:"gallery_id"`
	Title     string `gorm:"column:title;not null" json:"title"`
	Slug      string `gorm:"column:slug;not null" json:"slug"`
	Legend    string `gorm:"column:legend" json:"legend"`
	Physical  string `gorm:"column:physical;not null" json:"physical"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Image) TableName() string { return "gallery_image" }
