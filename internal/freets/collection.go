package freets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
)

// Collection provides access to stored freets
type Collection struct {
	db        *gorm.DB
	observers []Observer
}

// NewCollection creates a new Collection instance. observers are told about
// every write inside its transaction.
func NewCollection(db *gorm.DB, observers ...Observer) *Collection {
	return &Collection{db: db, observers: observers}
}

// AddOne stores a new freet and returns it with its author populated
func (c *Collection) AddOne(ctx context.Context, authorID uuid.UUID, content string) (*models.Freet, error) {
	var freet *models.Freet
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := &models.Freet{
			AuthorID: authorID,
			Content:  content,
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create freet: %w", err)
		}
		var err error
		if freet, err = findOne(tx, created.ID); err != nil {
			return err
		}
		return notifySaved(tx, c.observers, freet)
	})
	if err != nil {
		return nil, err
	}
	return freet, nil
}

// FindOneByFreetID finds a freet by id
func (c *Collection) FindOneByFreetID(ctx context.Context, freetID uuid.UUID) (*models.Freet, error) {
	return findOne(c.db.WithContext(ctx), freetID)
}

func findOne(db *gorm.DB, freetID uuid.UUID) (*models.Freet, error) {
	var freet models.Freet
	if err := db.Preload("Author").First(&freet, "id = ?", freetID).Error; err != nil {
		return nil, fmt.Errorf("failed to find freet %s: %w", freetID, err)
	}
	return &freet, nil
}

// FindAll returns every freet, newest first
func (c *Collection) FindAll(ctx context.Context) ([]models.Freet, error) {
	var freets []models.Freet
	if err := c.db.WithContext(ctx).Preload("Author").Order("created_at DESC").Find(&freets).Error; err != nil {
		return nil, fmt.Errorf("failed to list freets: %w", err)
	}
	return freets, nil
}

// FindAllByUsername returns the freets written by username, newest first
func (c *Collection) FindAllByUsername(ctx context.Context, username string) ([]models.Freet, error) {
	var freets []models.Freet
	err := c.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = freets.author_id").
		Where("LOWER(users.username) = LOWER(?)", strings.TrimSpace(username)).
		Order("freets.created_at DESC").
		Find(&freets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list freets by %s: %w", username, err)
	}
	return freets, nil
}

// UpdateOne replaces the content of a freet
func (c *Collection) UpdateOne(ctx context.Context, freetID uuid.UUID, content string) (*models.Freet, error) {
	var freet *models.Freet
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Freet{}).Where("id = ?", freetID).Update("content", content)
		if res.Error != nil {
			return fmt.Errorf("failed to update freet %s: %w", freetID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to update freet %s: %w", freetID, gorm.ErrRecordNotFound)
		}
		var err error
		if freet, err = findOne(tx, freetID); err != nil {
			return err
		}
		return notifySaved(tx, c.observers, freet)
	})
	if err != nil {
		return nil, err
	}
	return freet, nil
}

// DeleteOne deletes a freet together with the records derived from it and
// its table memberships, reporting whether the freet existed.
func (c *Collection) DeleteOne(ctx context.Context, freetID uuid.UUID) (bool, error) {
	var deleted bool
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := notifyDeleted(tx, c.observers, freetID); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM table_freets WHERE freet_id = ?", freetID).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Freet{}, "id = ?", freetID)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete freet %s: %w", freetID, err)
	}
	return deleted, nil
}
