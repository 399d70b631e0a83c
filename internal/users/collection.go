package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
)

// ErrInvalidCredentials is returned when a username and password do not match
var ErrInvalidCredentials = errors.New("invalid username or password")

// Collection provides access to stored users
type Collection struct {
	db *gorm.DB
}

// NewCollection creates a new Collection instance
func NewCollection(db *gorm.DB) *Collection {
	return &Collection{db: db}
}

// AddOne stores a new user with a bcrypt hash of password
func (c *Collection) AddOne(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
	}
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return user, nil
}

// FindOneByUserID finds a user by id
func (c *Collection) FindOneByUserID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

// FindOneByUsername finds a user by username, ignoring case
func (c *Collection) FindOneByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", username, err)
	}
	return &user, nil
}

// FindOneByUsernameAndPassword returns the user only if password matches
func (c *Collection) FindOneByUsernameAndPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.FindOneByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteOne deletes a user by id, reporting whether a row was removed
func (c *Collection) DeleteOne(ctx context.Context, userID uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete user %s: %w", userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
