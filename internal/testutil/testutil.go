// Package testutil holds fixtures shared by the collection tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/database"
	"github.com/beesaferoot/fritter/internal/migration"
	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// SessionSecret signs the cookies issued in tests.
var SessionSecret = []byte(strings.Repeat("t", 32))

// NewDB opens a migrated sqlite database that lives for the length of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenDialector(database.SQLiteDialector(filepath.Join(t.TempDir(), "fritter.db")), false)
	require.NoError(t, err)
	require.NoError(t, migration.Latest(db))
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// NewSessions returns a session store using SessionSecret.
func NewSessions() *web.Sessions {
	return web.NewSessions(SessionSecret, false)
}

// CreateUser stores a user with an unusable password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "-"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateFreet stores a freet written by author.
func CreateFreet(t *testing.T, db *gorm.DB, author *models.User, content string) *models.Freet {
	t.Helper()
	freet := &models.Freet{AuthorID: author.ID, Content: content}
	require.NoError(t, db.Create(freet).Error)
	return freet
}

// SessionCookie returns a cookie that signs userID in with sessions.
func SessionCookie(t *testing.T, sessions *web.Sessions, userID uuid.UUID) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.SignIn(rec, httptest.NewRequest(http.MethodPost, "/", nil), userID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}
