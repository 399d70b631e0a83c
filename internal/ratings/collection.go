package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beesaferoot/fritter/internal/models"
)

// Collection provides access to the ratings stored for each freet
type Collection struct {
	db *gorm.DB
}

// NewCollection creates a new Collection instance
func NewCollection(db *gorm.DB) *Collection {
	return &Collection{db: db}
}

// AddOne rates the freet with the given content and stores the rating
func (c *Collection) AddOne(ctx context.Context, authorID, freetID uuid.UUID, content string) (*models.Rating, error) {
	rating := &models.Rating{
		AuthorID: authorID,
		FreetID:  freetID,
		Warnings: Check(content),
	}
	// nested so that a duplicate insert only rolls back to a savepoint when
	// c runs inside a freet write
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rating).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rating for freet %s: %w", freetID, err)
	}
	return c.FindOneByRatingID(ctx, rating.ID)
}

// FindOneByRatingID finds a rating by id
func (c *Collection) FindOneByRatingID(ctx context.Context, ratingID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := c.db.WithContext(ctx).Preload("Author").First(&rating, "id = ?", ratingID).Error; err != nil {
		return nil, fmt.Errorf("failed to find rating %s: %w", ratingID, err)
	}
	return &rating, nil
}

// FindOneByFreetID finds the rating of a freet
func (c *Collection) FindOneByFreetID(ctx context.Context, freetID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := c.db.WithContext(ctx).Preload("Author").First(&rating, "freet_id = ?", freetID).Error; err != nil {
		return nil, fmt.Errorf("failed to find rating for freet %s: %w", freetID, err)
	}
	return &rating, nil
}

// UpdateOne re-rates a freet after its content changed
func (c *Collection) UpdateOne(ctx context.Context, freetID uuid.UUID, content string) (*models.Rating, error) {
	rating, err := c.FindOneByFreetID(ctx, freetID)
	if err != nil {
		return nil, err
	}

	rating.Warnings = Check(content)
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Save(rating).Error; err != nil {
		return nil, fmt.Errorf("failed to update rating for freet %s: %w", freetID, err)
	}
	return c.FindOneByRatingID(ctx, rating.ID)
}

// DeleteOne deletes a rating by id, reporting whether a row was removed
func (c *Collection) DeleteOne(ctx context.Context, ratingID uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).Delete(&models.Rating{}, "id = ?", ratingID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete rating %s: %w", ratingID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteManyByFreetID deletes the rating of a freet, if any
func (c *Collection) DeleteManyByFreetID(ctx context.Context, freetID uuid.UUID) error {
	if err := c.db.WithContext(ctx).Delete(&models.Rating{}, "freet_id = ?", freetID).Error; err != nil {
		return fmt.Errorf("failed to delete ratings for freet %s: %w", freetID, err)
	}
	return nil
}

// FindAllByUsername returns the ratings of every freet written by username
func (c *Collection) FindAllByUsername(ctx context.Context, username string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := c.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = ratings.author_id").
		Where("LOWER(users.username) = LOWER(?)", strings.TrimSpace(username)).
		Order("ratings.created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings by %s: %w", username, err)
	}
	return ratings, nil
}

// Rescan rates freet, creating its rating on first use
func (c *Collection) Rescan(ctx context.Context, freet *models.Freet) (*models.Rating, error) {
	rating, err := c.UpdateOne(ctx, freet.ID, freet.Content)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return rating, err
	}
	rating, err = c.AddOne(ctx, freet.AuthorID, freet.ID, freet.Content)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent rescan created it first
		return c.UpdateOne(ctx, freet.ID, freet.Content)
	}
	return rating, err
}

// FreetSaved keeps the freet's rating in step with its content
func (c *Collection) FreetSaved(tx *gorm.DB, freet *models.Freet) error {
	_, err := NewCollection(tx).Rescan(tx.Statement.Context, freet)
	return err
}

// FreetDeleted drops the rating of a deleted freet
func (c *Collection) FreetDeleted(tx *gorm.DB, freetID uuid.UUID) error {
	return NewCollection(tx).DeleteManyByFreetID(tx.Statement.Context, freetID)
}
