package freets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// MaxContentLength is the longest freet accepted, in characters.
const MaxContentLength = 140

// Guard holds the freet existence and permission checks
type Guard struct {
	freets   *Collection
	sessions *web.Sessions
}

// NewGuard creates a new Guard instance
func NewGuard(freets *Collection, sessions *web.Sessions) *Guard {
	return &Guard{freets: freets, sessions: sessions}
}

type freetKey struct{}

// FreetFromContext returns the freet checked by IsFreetExists
func FreetFromContext(ctx context.Context) (*models.Freet, bool) {
	freet, ok := ctx.Value(freetKey{}).(*models.Freet)
	return freet, ok
}

// freetIDFrom looks for the freet id in the path, then the JSON body, then
// the query string.
func freetIDFrom(r *http.Request) string {
	if id := r.PathValue("freetId"); id != "" {
		return id
	}
	var body struct {
		FreetID string `json:"freetId"`
	}
	web.PeekJSON(r, &body)
	if body.FreetID != "" {
		return body.FreetID
	}
	return r.URL.Query().Get("freetId")
}

// IsFreetExists checks that the referenced freet exists and passes it on
// to the handler, see FreetFromContext.
func (g *Guard) IsFreetExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := freetIDFrom(r)
		if raw == "" {
			web.WriteError(w, http.StatusBadRequest, "Provided freet ID must be nonempty.")
			return
		}
		if id, ok := models.ParseID(raw); ok {
			freet, err := g.freets.FindOneByFreetID(r.Context(), id)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), freetKey{}, freet)))
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				web.InternalError(w, r, err)
				return
			}
		}
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"freetNotFound": fmt.Sprintf("Freet with freet ID %s does not exist.", raw),
		})
	})
}

// IsValidFreetModifier checks that the session user wrote the freet.
// It must run after IsFreetExists.
func (g *Guard) IsValidFreetModifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		freet, ok := FreetFromContext(r.Context())
		if !ok {
			web.InternalError(w, r, errors.New("freet modifier check ran without a checked freet"))
			return
		}
		userID, ok := g.sessions.UserID(r)
		if !ok || userID != freet.AuthorID {
			web.WriteError(w, http.StatusForbidden, "Cannot modify other users' freets.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsValidFreetContent checks that the body carries 1 to MaxContentLength characters
func (g *Guard) IsValidFreetContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		web.PeekJSON(r, &body)
		if strings.TrimSpace(body.Content) == "" {
			web.WriteError(w, http.StatusBadRequest, "Freet content must be at least one character long.")
			return
		}
		if utf8.RuneCountInString(body.Content) > MaxContentLength {
			web.WriteError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Freet content must be no more than %d characters.", MaxContentLength))
			return
		}
		next.ServeHTTP(w, r)
	})
}
