package freets

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/testutil"
	"github.com/beesaferoot/fritter/internal/users"
	"github.com/beesaferoot/fritter/internal/web"
)

type recordingObserver struct {
	saved   []uuid.UUID
	deleted []uuid.UUID
}

func (o *recordingObserver) FreetSaved(tx *gorm.DB, freet *models.Freet) error {
	o.saved = append(o.saved, freet.ID)
	return nil
}

func (o *recordingObserver) FreetDeleted(tx *gorm.DB, freetID uuid.UUID) error {
	o.deleted = append(o.deleted, freetID)
	return nil
}

type fixture struct {
	db       *gorm.DB
	mux      *http.ServeMux
	sessions *web.Sessions
	observer *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	sessions := testutil.NewSessions()
	userGuard := users.NewGuard(users.NewCollection(db), sessions)
	observer := &recordingObserver{}
	freets := NewCollection(db, observer)

	mux := http.NewServeMux()
	NewRouter(freets, sessions, NewGuard(freets, sessions), userGuard.IsUserLoggedIn).Register(mux)
	return &fixture{db: db, mux: mux, sessions: sessions, observer: observer}
}

func (f *fixture) serve(method, path, body string, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		rec := httptest.NewRecorder()
		_ = f.sessions.SignIn(rec, httptest.NewRequest(http.MethodPost, "/", nil), user.ID)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateFreet(t *testing.T) {
	f := newFixture(t)
	alyssa := testutil.CreateUser(t, f.db, "alyssa")

	rec := f.serve(http.MethodPost, "/api/freets", `{"content":"first freet"}`, alyssa)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Freet models.Freet `json:"freet"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "first freet", body.Freet.Content)
	assert.Equal(t, alyssa.ID, body.Freet.AuthorID)
	assert.Equal(t, []uuid.UUID{body.Freet.ID}, f.observer.saved)

	t.Run("Requires Login", func(t *testing.T) {
		rec := f.serve(http.MethodPost, "/api/freets", `{"content":"anon"}`, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Empty Content", func(t *testing.T) {
		rec := f.serve(http.MethodPost, "/api/freets", `{"content":"   "}`, alyssa)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Content Too Long", func(t *testing.T) {
		rec := f.serve(http.MethodPost, "/api/freets", `{"content":"`+strings.Repeat("a", MaxContentLength+1)+`"}`, alyssa)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestFreetGuards(t *testing.T) {
	f := newFixture(t)
	alyssa := testutil.CreateUser(t, f.db, "alyssa")
	ben := testutil.CreateUser(t, f.db, "ben")
	freet := testutil.CreateFreet(t, f.db, alyssa, "original")

	t.Run("Show", func(t *testing.T) {
		rec := f.serve(http.MethodGet, "/api/freets/"+freet.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"content":"original"`)
	})

	t.Run("Malformed ID", func(t *testing.T) {
		rec := f.serve(http.MethodGet, "/api/freets/not-an-id", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":{"freetNotFound":"Freet with freet ID not-an-id does not exist."}}`, rec.Body.String())
	})

	t.Run("Unknown ID", func(t *testing.T) {
		rec := f.serve(http.MethodGet, "/api/freets/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Other User Cannot Edit", func(t *testing.T) {
		rec := f.serve(http.MethodPatch, "/api/freets/"+freet.ID.String(), `{"content":"hijacked"}`, ben)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Author Edits", func(t *testing.T) {
		rec := f.serve(http.MethodPatch, "/api/freets/"+freet.ID.String(), `{"content":"edited"}`, alyssa)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"content":"edited"`)
		assert.Contains(t, f.observer.saved, freet.ID)
	})

	t.Run("List By Author", func(t *testing.T) {
		rec := f.serve(http.MethodGet, "/api/freets?author=alyssa", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []models.Freet
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	})

	t.Run("Other User Cannot Delete", func(t *testing.T) {
		rec := f.serve(http.MethodDelete, "/api/freets/"+freet.ID.String(), "", ben)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Author Deletes", func(t *testing.T) {
		rec := f.serve(http.MethodDelete, "/api/freets/"+freet.ID.String(), "", alyssa)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uuid.UUID{freet.ID}, f.observer.deleted)
	})
}

func TestIsFreetExistsReadsBodyAndQuery(t *testing.T) {
	f := newFixture(t)
	alyssa := testutil.CreateUser(t, f.db, "alyssa")
	freet := testutil.CreateFreet(t, f.db, alyssa, "hello")
	guard := NewGuard(NewCollection(f.db), f.sessions)

	var (
		reachedBody string
		checked     *models.Freet
	)
	h := guard.IsFreetExists(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, web.DecodeJSON(r, &body))
		reachedBody = body["freetId"]
		checked, _ = FreetFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"freetId":"`+freet.ID.String()+`"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, freet.ID.String(), reachedBody)
	require.NotNil(t, checked)
	assert.Equal(t, freet.ID, checked.ID)

	t.Run("Body Wins Over Query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/?freetId="+freet.ID.String(),
			strings.NewReader(`{"freetId":"`+uuid.NewString()+`"}`)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Malformed Body ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"freetId":"garbage"}`)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?freetId="+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
