package models

import "github.com/google/uuid"

// Vote records the stance a user has taken on a freet
type Vote struct {
	Model
	VoterID uuid.UUID `json:"voterId" gorm:"type:uuid;not null;uniqueIndex:idx_vote_voter_freet"`
	Voter   *User     `json:"voter,omitempty" gorm:"foreignKey:VoterID"`
	FreetID uuid.UUID `json:"freetId" gorm:"type:uuid;not null;uniqueIndex:idx_vote_voter_freet;index"`
	Freet   *Freet    `json:"freet,omitempty" gorm:"foreignKey:FreetID"`
	Upvote  bool      `json:"upvote"`
}

// Weight is +1 for an upvote and -1 for a downvote.
func (v Vote) Weight() int {
	if v.Upvote {
		return 1
	}
	return -1
}
