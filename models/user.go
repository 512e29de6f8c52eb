package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleUser   UserRole = "user"
)

type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"default:'user'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ratings []Rating `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
