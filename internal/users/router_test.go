package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/fritter/internal/testutil"
)

func newTestMux(t *testing.T) (*http.ServeMux, *Collection) {
	t.Helper()
	users := NewCollection(testutil.NewDB(t))
	sessions := testutil.NewSessions()
	mux := http.NewServeMux()
	NewRouter(users, sessions, NewGuard(users, sessions)).Register(mux)
	return mux, users
}

func serve(mux http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateUser(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := serve(mux, http.MethodPost, "/api/users", `{"username":"alyssa","password":"hacker"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies())

	var body struct {
		User map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alyssa", body.User["username"])
	assert.NotContains(t, body.User, "passwordHash")

	t.Run("Username Taken", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/api/users", `{"username":"ALYSSA","password":"x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Invalid Username", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/api/users", `{"username":"a b","password":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing Password", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/api/users", `{"username":"ben"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionRoutes(t *testing.T) {
	mux, users := newTestMux(t)
	_, err := users.AddOne(context.Background(), "alyssa", "hacker")
	require.NoError(t, err)

	t.Run("Wrong Password", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/api/users/session", `{"username":"alyssa","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	rec := serve(mux, http.MethodPost, "/api/users/session", `{"username":"alyssa","password":"hacker"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	t.Run("Current User", func(t *testing.T) {
		rec := serve(mux, http.MethodGet, "/api/users/session", "", cookies[0])
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"alyssa"`)
	})

	t.Run("Already Signed In", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/api/users/session", `{"username":"alyssa","password":"hacker"}`, cookies[0])
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Sign Out", func(t *testing.T) {
		rec := serve(mux, http.MethodDelete, "/api/users/session", "", cookies[0])
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Sign Out Requires Session", func(t *testing.T) {
		rec := serve(mux, http.MethodDelete, "/api/users/session", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Anonymous Session", func(t *testing.T) {
		rec := serve(mux, http.MethodGet, "/api/users/session", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user":null`)
	})
}
