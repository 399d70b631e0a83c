package users

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/web"
)

var usernamePattern = regexp.MustCompile(`^\w+$`)

// Guard holds the request checks that depend on the session user
type Guard struct {
	users    *Collection
	sessions *web.Sessions
}

// NewGuard creates a new Guard instance
func NewGuard(users *Collection, sessions *web.Sessions) *Guard {
	return &Guard{users: users, sessions: sessions}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IsUserLoggedIn checks that the session belongs to an existing user
func (g *Guard) IsUserLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := g.sessions.UserID(r)
		if !ok {
			web.WriteError(w, http.StatusForbidden, "You must be logged in to complete this action.")
			return
		}
		if _, err := g.users.FindOneByUserID(r.Context(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				web.WriteError(w, http.StatusForbidden, "You must be logged in to complete this action.")
				return
			}
			web.InternalError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsUserLoggedOut checks that nobody is signed in
func (g *Guard) IsUserLoggedOut(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := g.sessions.UserID(r); ok {
			web.WriteError(w, http.StatusForbidden, "You are already signed in.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsValidCredentials checks the shape of the username and password in the body
func (g *Guard) IsValidCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		web.PeekJSON(r, &body)
		if !usernamePattern.MatchString(body.Username) {
			web.WriteError(w, http.StatusBadRequest, map[string]string{
				"username": "Username must be a nonempty alphanumeric string.",
			})
			return
		}
		if body.Password == "" {
			web.WriteError(w, http.StatusBadRequest, map[string]string{
				"password": "Password must be a nonempty string.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsUsernameNotAlreadyInUse checks that no account has the requested username
func (g *Guard) IsUsernameNotAlreadyInUse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		web.PeekJSON(r, &body)
		_, err := g.users.FindOneByUsername(r.Context(), body.Username)
		if err == nil {
			web.WriteError(w, http.StatusConflict, map[string]string{
				"username": fmt.Sprintf("An account with username %s already exists.", body.Username),
			})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			web.InternalError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
