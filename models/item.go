package models

import "time"

// Item is a catalog record for a single book. The (name, author_id) pair is
// unique at the store level; the service layer additionally runs a
// case-insensitive duplicate check for a friendlier error message.
type Item struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Name          string    `json:"name" gorm:"size:200;not null;uniqueIndex:idx_items_name_author"`
	AuthorID      uint      `json:"author_id" gorm:"not null;uniqueIndex:idx_items_name_author"`
	Author        *Author   `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
	CategoryID    uint      `json:"category_id" gorm:"not null"`
	Category      *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	PdfPath       string    `json:"pdf_path,omitempty" gorm:"size:500"`
	DownloadCount int       `json:"download_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Ratings []Rating `json:"ratings,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}
