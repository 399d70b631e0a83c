package tables

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

// ErrUnknownReference is returned when an update names a user or freet that does not exist
var ErrUnknownReference = errors.New("unknown reference")

// Collection provides access to stored tables
type Collection struct {
	db *gorm.DB
}

// NewCollection creates a new Collection instance
func NewCollection(db *gorm.DB) *Collection {
	return &Collection{db: db}
}

// Details lists the fields an update may overwrite. Nil fields are left alone;
// an empty non-nil list clears the membership.
type Details struct {
	Tablename *string     `json:"tablename"`
	Admin     *uuid.UUID  `json:"admin"`
	Users     []uuid.UUID `json:"users"`
	Mods      []uuid.UUID `json:"mods"`
	Freets    []uuid.UUID `json:"freets"`
}

func populated(db *gorm.DB) *gorm.DB {
	return db.Preload("Admin").Preload("Users").Preload("Mods").Preload("Freets")
}

// AddOne creates an empty table administered by admin
func (c *Collection) AddOne(ctx context.Context, tablename string, admin *models.User) (*models.Table, error) {
	table := &models.Table{
		Tablename: strings.TrimSpace(tablename),
		AdminID:   admin.ID,
	}
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(table).Error; err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table.Tablename, err)
	}
	return c.FindOneByTableID(ctx, table.ID)
}

// FindOneByTableID finds a table by id
func (c *Collection) FindOneByTableID(ctx context.Context, tableID uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := populated(c.db.WithContext(ctx)).First(&table, "id = ?", tableID).Error; err != nil {
		return nil, fmt.Errorf("failed to find table %s: %w", tableID, err)
	}
	return &table, nil
}

// FindOneByTable finds a table by name, ignoring case and surrounding space
func (c *Collection) FindOneByTable(ctx context.Context, tablename string) (*models.Table, error) {
	var table models.Table
	err := populated(c.db.WithContext(ctx)).
		Where("LOWER(tablename) = LOWER(?)", strings.TrimSpace(tablename)).
		First(&table).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find table %s: %w", tablename, err)
	}
	return &table, nil
}

// FindAllByMember returns the tables userID administers, belongs to or moderates
func (c *Collection) FindAllByMember(ctx context.Context, userID uuid.UUID) ([]models.Table, error) {
	var tables []models.Table
	db := c.db.WithContext(ctx)
	err := populated(db).
		Where("admin_id = ?", userID).
		Or("id IN (?)", db.Table("table_users").Select("table_id").Where("user_id = ?", userID)).
		Or("id IN (?)", db.Table("table_mods").Select("table_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tables of user %s: %w", userID, err)
	}
	return tables, nil
}

// UpdateOne overwrites the fields set in details and returns the stored table
func (c *Collection) UpdateOne(ctx context.Context, tableID uuid.UUID, details Details) (*models.Table, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
			return fmt.Errorf("failed to find table %s: %w", tableID, err)
		}

		if details.Tablename != nil {
			if name := strings.TrimSpace(*details.Tablename); name != "" {
				table.Tablename = name
			}
		}
		if details.Admin != nil {
			admins, err := findUsers(tx, []uuid.UUID{*details.Admin})
			if err != nil {
				return err
			}
			table.AdminID = admins[0].ID
		}
		if err := tx.Omit(clause.Associations).Save(&table).Error; err != nil {
			return fmt.Errorf("failed to save table %s: %w", tableID, err)
		}

		if details.Users != nil {
			members, err := findUsers(tx, details.Users)
			if err != nil {
				return err
			}
			if err := replace(tx, &table, "Users", members, len(members)); err != nil {
				return err
			}
		}
		if details.Mods != nil {
			mods, err := findUsers(tx, details.Mods)
			if err != nil {
				return err
			}
			if err := replace(tx, &table, "Mods", mods, len(mods)); err != nil {
				return err
			}
		}
		if details.Freets != nil {
			freets, err := findFreets(tx, details.Freets)
			if err != nil {
				return err
			}
			if err := replace(tx, &table, "Freets", freets, len(freets)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.FindOneByTableID(ctx, tableID)
}

// DeleteOne deletes a table with its membership rows, reporting whether the table existed
func (c *Collection) DeleteOne(ctx context.Context, tableID uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).
		Select("Users", "Mods", "Freets").
		Delete(&models.Table{Model: models.Model{ID: tableID}})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete table %s: %w", tableID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func replace(tx *gorm.DB, table *models.Table, name string, values interface{}, n int) error {
	assoc := tx.Model(table).Association(name)
	var err error
	if n == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("failed to replace %s of table %s: %w", strings.ToLower(name), table.ID, err)
	}
	return nil
}

func findUsers(tx *gorm.DB, ids []uuid.UUID) ([]models.User, error) {
	ids = dedupe(ids)
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if len(users) != len(ids) {
		return nil, fmt.Errorf("%w: user ids %v", ErrUnknownReference, missing(ids, users, func(u models.User) uuid.UUID { return u.ID }))
	}
	return users, nil
}

func findFreets(tx *gorm.DB, ids []uuid.UUID) ([]models.Freet, error) {
	ids = dedupe(ids)
	var freets []models.Freet
	if len(ids) == 0 {
		return freets, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&freets).Error; err != nil {
		return nil, fmt.Errorf("failed to load freets: %w", err)
	}
	if len(freets) != len(ids) {
		return nil, fmt.Errorf("%w: freet ids %v", ErrUnknownReference, missing(ids, freets, func(f models.Freet) uuid.UUID { return f.ID }))
	}
	return freets, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missing[T any](ids []uuid.UUID, found []T, idOf func(T) uuid.UUID) []uuid.UUID {
	have := make(map[uuid.UUID]bool, len(found))
	for _, f := range found {
		have[idOf(f)] = true
	}
	var out []uuid.UUID
	for _, id := range ids {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}
