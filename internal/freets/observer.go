package freets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
)

// Observer keeps records derived from a freet in step with it. Both methods
// run inside the transaction that writes the freet; an error rolls the whole
// write back.
type Observer interface {
	FreetSaved(tx *gorm.DB, freet *models.Freet) error
	FreetDeleted(tx *gorm.DB, freetID uuid.UUID) error
}

func notifySaved(tx *gorm.DB, observers []Observer, freet *models.Freet) error {
	for _, o := range observers {
		if err := o.FreetSaved(tx, freet); err != nil {
			return err
		}
	}
	return nil
}

func notifyDeleted(tx *gorm.DB, observers []Observer, freetID uuid.UUID) error {
	for _, o := range observers {
		if err := o.FreetDeleted(tx, freetID); err != nil {
			return err
		}
	}
	return nil
}
