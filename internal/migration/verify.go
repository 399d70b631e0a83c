package migration

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Drift is a table or column a model expects but the database lacks.
// Column is empty when the whole table is missing.
type Drift struct {
	Table  string
	Column string
}

func (d Drift) String() string {
	if d.Column == "" {
		return fmt.Sprintf("missing table %s", d.Table)
	}
	return fmt.Sprintf("missing column %s.%s", d.Table, d.Column)
}

// Verify compares the parsed schema of each model, including its join
// tables, with what db actually holds.
func Verify(db *gorm.DB, models ...interface{}) ([]Drift, error) {
	cache := &sync.Map{}
	migrator := db.Migrator()

	var drift []Drift
	for _, model := range models {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		if !migrator.HasTable(s.Table) {
			drift = append(drift, Drift{Table: s.Table})
		} else {
			for _, field := range s.Fields {
				if field.DBName == "" {
					continue
				}
				if !migrator.HasColumn(model, field.DBName) {
					drift = append(drift, Drift{Table: s.Table, Column: field.DBName})
				}
			}
		}

		for _, rel := range s.Relationships.Relations {
			if rel.JoinTable != nil && !migrator.HasTable(rel.JoinTable.Table) {
				drift = append(drift, Drift{Table: rel.JoinTable.Table})
			}
		}
	}
	return drift, nil
}
