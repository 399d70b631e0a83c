package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/database"
	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestAddAndFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tables := NewCollection(db)
	alyssa := testutil.CreateUser(t, db, "alyssa")

	table, err := tables.AddOne(ctx, "  Study Group ", alyssa)
	require.NoError(t, err)
	assert.Equal(t, "Study Group", table.Tablename)
	assert.Equal(t, alyssa.ID, table.Admin.ID)
	assert.Empty(t, table.Users)
	assert.Empty(t, table.Mods)
	assert.Empty(t, table.Freets)

	t.Run("By ID", func(t *testing.T) {
		found, err := tables.FindOneByTableID(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, "alyssa", found.Admin.Username)
	})

	t.Run("By Name", func(t *testing.T) {
		found, err := tables.FindOneByTable(ctx, " study group")
		require.NoError(t, err)
		assert.Equal(t, table.ID, found.ID)
	})

	t.Run("Name Is Matched Literally", func(t *testing.T) {
		_, err := tables.FindOneByTable(ctx, "Study.*")
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := tables.FindOneByTableID(ctx, uuid.New())
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tables := NewCollection(db)
	alyssa := testutil.CreateUser(t, db, "alyssa")
	ben := testutil.CreateUser(t, db, "ben")
	cy := testutil.CreateUser(t, db, "cy")
	freet := testutil.CreateFreet(t, db, alyssa, "table talk")

	table, err := tables.AddOne(ctx, "sicp", alyssa)
	require.NoError(t, err)

	updated, err := tables.UpdateOne(ctx, table.ID, Details{
		Tablename: ptr("SICP readers"),
		Users:     []uuid.UUID{ben.ID, cy.ID, ben.ID},
		Mods:      []uuid.UUID{cy.ID},
		Freets:    []uuid.UUID{freet.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "SICP readers", updated.Tablename)
	assert.ElementsMatch(t, []string{"ben", "cy"}, usernames(updated.Users))
	assert.Equal(t, []string{"cy"}, usernames(updated.Mods))
	require.Len(t, updated.Freets, 1)
	assert.Equal(t, freet.ID, updated.Freets[0].ID)

	t.Run("Blank Name And Omitted Fields Are Kept", func(t *testing.T) {
		kept, err := tables.UpdateOne(ctx, table.ID, Details{Tablename: ptr("   ")})
		require.NoError(t, err)
		assert.Equal(t, "SICP readers", kept.Tablename)
		assert.Len(t, kept.Users, 2)
		assert.Len(t, kept.Mods, 1)
	})

	t.Run("Empty List Clears", func(t *testing.T) {
		cleared, err := tables.UpdateOne(ctx, table.ID, Details{Mods: []uuid.UUID{}})
		require.NoError(t, err)
		assert.Empty(t, cleared.Mods)
		assert.Len(t, cleared.Users, 2)
	})

	t.Run("Transfer Admin", func(t *testing.T) {
		moved, err := tables.UpdateOne(ctx, table.ID, Details{Admin: &ben.ID})
		require.NoError(t, err)
		assert.Equal(t, ben.ID, moved.AdminID)
		assert.Equal(t, "ben", moved.Admin.Username)
	})

	t.Run("Unknown Reference Rolls Back", func(t *testing.T) {
		_, err := tables.UpdateOne(ctx, table.ID, Details{
			Tablename: ptr("renamed"),
			Users:     []uuid.UUID{uuid.New()},
		})
		assert.True(t, errors.Is(err, ErrUnknownReference))

		found, err := tables.FindOneByTableID(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, "SICP readers", found.Tablename)
		assert.Len(t, found.Users, 2)
	})

	t.Run("Missing Table", func(t *testing.T) {
		_, err := tables.UpdateOne(ctx, uuid.New(), Details{})
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestFindAllByMember(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tables := NewCollection(db)
	alyssa := testutil.CreateUser(t, db, "alyssa")
	ben := testutil.CreateUser(t, db, "ben")
	cy := testutil.CreateUser(t, db, "cy")
	eva := testutil.CreateUser(t, db, "eva")

	owned, err := tables.AddOne(ctx, "owned", alyssa)
	require.NoError(t, err)
	joined, err := tables.AddOne(ctx, "joined", ben)
	require.NoError(t, err)
	_, err = tables.UpdateOne(ctx, joined.ID, Details{Users: []uuid.UUID{alyssa.ID}})
	require.NoError(t, err)
	moderated, err := tables.AddOne(ctx, "moderated", cy)
	require.NoError(t, err)
	_, err = tables.UpdateOne(ctx, moderated.ID, Details{Mods: []uuid.UUID{alyssa.ID}})
	require.NoError(t, err)
	_, err = tables.AddOne(ctx, "elsewhere", eva)
	require.NoError(t, err)

	found, err := tables.FindAllByMember(ctx, alyssa.ID)
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, table := range found {
		ids = append(ids, table.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{owned.ID, joined.ID, moderated.ID}, ids)
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tables := NewCollection(db)
	alyssa := testutil.CreateUser(t, db, "alyssa")
	ben := testutil.CreateUser(t, db, "ben")

	table, err := tables.AddOne(ctx, "doomed", alyssa)
	require.NoError(t, err)
	_, err = tables.UpdateOne(ctx, table.ID, Details{Users: []uuid.UUID{ben.ID}, Mods: []uuid.UUID{ben.ID}})
	require.NoError(t, err)

	deleted, err := tables.DeleteOne(ctx, table.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var memberships int64
	require.NoError(t, db.Table("table_users").Where("table_id = ?", table.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)
	require.NoError(t, db.Table("table_mods").Where("table_id = ?", table.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)

	deleted, err = tables.DeleteOne(ctx, table.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFindOneByTablePostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := database.OpenDialector(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), false)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "tables" WHERE LOWER\(tablename\) = LOWER\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tablename", "admin_id"}))

	_, err = NewCollection(db).FindOneByTable(context.Background(), "Study Group")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}
