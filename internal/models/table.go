package models

import "github.com/google/uuid"

// Table is a named group of users sharing a set of freets.
// The admin is the only user allowed to modify or delete it.
type Table struct {
	Model
	Tablename string    `json:"tablename" gorm:"not null;index"`
	AdminID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Admin     User      `json:"admin" gorm:"foreignKey:AdminID"`
	Users     []User    `json:"users" gorm:"many2many:table_users"`
	Mods      []User    `json:"mods" gorm:"many2many:table_mods"`
	Freets    []Freet   `json:"freets" gorm:"many2many:table_freets"`
}
