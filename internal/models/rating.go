package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Rating holds the personal-information warnings found in a freet.
// There is at most one rating per freet.
type Rating struct {
	Model
	AuthorID uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	FreetID  uuid.UUID `json:"freetId" gorm:"type:uuid;not null;uniqueIndex"`
	Warnings Warnings  `json:"warnings" gorm:"serializer:json;not null"`
}

// Warnings is the list of findings attached to a rating.
type Warnings []Warning

// Warning pairs the kind of information found with the excerpt that matched.
// It is encoded as a two element array: ["email", "jane@example.com"].
type Warning struct {
	Kind    string
	Excerpt string
}

func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{w.Kind, w.Excerpt})
}

func (w *Warning) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("warning: expected a pair, got %d elements", len(pair))
	}
	w.Kind, w.Excerpt = pair[0], pair[1]
	return nil
}
