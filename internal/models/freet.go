package models

import "github.com/google/uuid"

// Freet represents a short post written by a user
type Freet struct {
	Model
	AuthorID uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Content  string    `json:"content" gorm:"not null"`
}
