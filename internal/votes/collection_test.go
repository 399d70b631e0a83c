package votes

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/database"
	"github.com/beesaferoot/fritter/internal/testutil"
)

func TestCollection(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	votes := NewCollection(db)
	alyssa := testutil.CreateUser(t, db, "alyssa")
	ben := testutil.CreateUser(t, db, "ben")
	cy := testutil.CreateUser(t, db, "cy")
	freet := testutil.CreateFreet(t, db, alyssa, "vote on me")

	up, err := votes.AddOne(ctx, ben.ID, freet.ID, true)
	require.NoError(t, err)
	require.NotNil(t, up.Voter)
	assert.Equal(t, "ben", up.Voter.Username)

	_, err = votes.AddOne(ctx, cy.ID, freet.ID, false)
	require.NoError(t, err)
	_, err = votes.AddOne(ctx, alyssa.ID, freet.ID, true)
	require.NoError(t, err)

	t.Run("One Vote Per Voter", func(t *testing.T) {
		_, err := votes.AddOne(ctx, ben.ID, freet.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("Score", func(t *testing.T) {
		score, err := votes.Score(ctx, freet.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score)

		tally, err := votes.Tally(ctx, freet.ID)
		require.NoError(t, err)
		assert.Equal(t, score, tally.Score)
		assert.Len(t, tally.Votes, 3)
	})

	t.Run("Unknown Freet", func(t *testing.T) {
		_, err := votes.AddOne(ctx, ben.ID, uuid.New(), true)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("Find By Voter", func(t *testing.T) {
		found, err := votes.FindOneByVoter(ctx, ben.ID, freet.ID)
		require.NoError(t, err)
		assert.Equal(t, up.ID, found.ID)

		_, err = votes.FindOneByVoter(ctx, ben.ID, uuid.New())
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := votes.UpdateOne(ctx, up.ID, false)
		require.NoError(t, err)
		assert.False(t, updated.Upvote)

		score, err := votes.Score(ctx, freet.ID)
		require.NoError(t, err)
		assert.Equal(t, -1, score)
	})

	t.Run("Delete", func(t *testing.T) {
		deleted, err := votes.DeleteOne(ctx, up.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = votes.DeleteOne(ctx, up.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Freet Deleted", func(t *testing.T) {
		require.NoError(t, votes.FreetDeleted(db.WithContext(ctx), freet.ID))
		remaining, err := votes.FindAllByFreetID(ctx, freet.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

func TestAddOneConcurrentDuplicatePostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := database.OpenDialector(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), false)
	require.NoError(t, err)

	// the pre-check misses a vote that a concurrent request inserts first
	mock.ExpectQuery(`SELECT \* FROM "votes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "voter_id", "freet_id", "upvote"}))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "votes"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err = NewCollection(db).AddOne(context.Background(), uuid.New(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
