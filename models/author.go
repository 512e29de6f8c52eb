package models

import "time"

type Author struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     *string   `json:"email,omitempty" gorm:"size:100"`
	Phone     *string   `json:"phone,omitempty" gorm:"size:20"`
	Age       int       `json:"age" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Books []Item `json:"books,omitempty" gorm:"foreignKey:AuthorID"`
}
