package models

// User represents an account that can author freets, own tables and vote
type User struct {
	Model
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}
