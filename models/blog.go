package models

import "time"

// BlogPost is an admin-authored article shown on the community blog.
type BlogPost struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Slug       string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title      string    `json:"title" gorm:"not null"`
	Content    string    `json:"content" gorm:"type:text"`
	ImageURL   string    `json:"imageUrl"`
	AuthorID   string    `json:"authorId" gorm:"index"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
