package models

import "time"

// Rating holds one user's score for one item. At most one row exists per
// (user, item); a re-vote overwrites score, comment and timestamp in place.
type Rating struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ItemID    uint      `json:"item_id" gorm:"not null;uniqueIndex:idx_ratings_user_item"`
	Item      *Item     `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_ratings_user_item"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Score     int       `json:"rating" gorm:"column:rating;not null"`
	Comment   *string   `json:"comment,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
}
