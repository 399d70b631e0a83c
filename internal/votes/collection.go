package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beesaferoot/fritter/internal/models"
)

// ErrAlreadyVoted is returned when a user votes twice on the same freet
var ErrAlreadyVoted = errors.New("user has already voted on this freet")

// Collection provides access to the votes cast on freets
type Collection struct {
	db *gorm.DB
}

// NewCollection creates a new Collection instance
func NewCollection(db *gorm.DB) *Collection {
	return &Collection{db: db}
}

// AddOne records the vote of voterID on freetID
func (c *Collection) AddOne(ctx context.Context, voterID, freetID uuid.UUID, upvote bool) (*models.Vote, error) {
	_, err := c.FindOneByVoter(ctx, voterID, freetID)
	if err == nil {
		return nil, ErrAlreadyVoted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote := &models.Vote{
		VoterID: voterID,
		FreetID: freetID,
		Upvote:  upvote,
	}
	if err := c.db.WithContext(ctx).Create(vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to create vote on freet %s: %w", freetID, err)
	}
	return c.FindOneByVoteID(ctx, vote.ID)
}

// FindOneByVoteID finds a vote by id
func (c *Collection) FindOneByVoteID(ctx context.Context, voteID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	if err := c.db.WithContext(ctx).Preload("Voter").First(&vote, "id = ?", voteID).Error; err != nil {
		return nil, fmt.Errorf("failed to find vote %s: %w", voteID, err)
	}
	return &vote, nil
}

// FindOneByVoter finds the vote voterID cast on freetID
func (c *Collection) FindOneByVoter(ctx context.Context, voterID, freetID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := c.db.WithContext(ctx).
		Preload("Voter").
		First(&vote, "voter_id = ? AND freet_id = ?", voterID, freetID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find vote of %s on freet %s: %w", voterID, freetID, err)
	}
	return &vote, nil
}

// FindAllByFreetID returns every vote cast on a freet, oldest first
func (c *Collection) FindAllByFreetID(ctx context.Context, freetID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	err := c.db.WithContext(ctx).
		Preload("Voter").
		Where("freet_id = ?", freetID).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find votes on freet %s: %w", freetID, err)
	}
	return votes, nil
}

// Tally is the votes cast on a freet with their running score
type Tally struct {
	Score int           `json:"score"`
	Votes []models.Vote `json:"votes"`
}

// Tally returns every vote cast on a freet together with its score
func (c *Collection) Tally(ctx context.Context, freetID uuid.UUID) (*Tally, error) {
	votes, err := c.FindAllByFreetID(ctx, freetID)
	if err != nil {
		return nil, err
	}
	tally := &Tally{Votes: votes}
	for _, v := range votes {
		tally.Score += v.Weight()
	}
	return tally, nil
}

// Score is the number of upvotes minus the number of downvotes on a freet
func (c *Collection) Score(ctx context.Context, freetID uuid.UUID) (int, error) {
	tally, err := c.Tally(ctx, freetID)
	if err != nil {
		return 0, err
	}
	return tally.Score, nil
}

// UpdateOne changes the direction of a vote
func (c *Collection) UpdateOne(ctx context.Context, voteID uuid.UUID, upvote bool) (*models.Vote, error) {
	vote, err := c.FindOneByVoteID(ctx, voteID)
	if err != nil {
		return nil, err
	}
	vote.Upvote = upvote
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Save(vote).Error; err != nil {
		return nil, fmt.Errorf("failed to update vote %s: %w", voteID, err)
	}
	return vote, nil
}

// DeleteOne deletes a vote by id, reporting whether a row was removed
func (c *Collection) DeleteOne(ctx context.Context, voteID uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", voteID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete vote %s: %w", voteID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteManyByFreetID deletes every vote cast on a freet
func (c *Collection) DeleteManyByFreetID(ctx context.Context, freetID uuid.UUID) error {
	if err := c.db.WithContext(ctx).Delete(&models.Vote{}, "freet_id = ?", freetID).Error; err != nil {
		return fmt.Errorf("failed to delete votes on freet %s: %w", freetID, err)
	}
	return nil
}

// FreetSaved is a no-op; votes outlive edits to the freet.
func (c *Collection) FreetSaved(tx *gorm.DB, freet *models.Freet) error {
	return nil
}

// FreetDeleted drops the votes cast on a deleted freet
func (c *Collection) FreetDeleted(tx *gorm.DB, freetID uuid.UUID) error {
	return NewCollection(tx).DeleteManyByFreetID(tx.Statement.Context, freetID)
}
