package users

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/web"
)

// Router serves the account and session routes
type Router struct {
	users    *Collection
	sessions *web.Sessions
	guard    *Guard
}

// NewRouter creates a new Router instance
func NewRouter(users *Collection, sessions *web.Sessions, guard *Guard) *Router {
	return &Router{users: users, sessions: sessions, guard: guard}
}

// Register mounts the routes on mux
func (rt *Router) Register(mux *http.ServeMux) {
	g := rt.guard
	mux.Handle("POST /api/users", web.ChainFunc(rt.create, g.IsUserLoggedOut, g.IsValidCredentials, g.IsUsernameNotAlreadyInUse))
	mux.Handle("GET /api/users/session", http.HandlerFunc(rt.current))
	mux.Handle("POST /api/users/session", web.ChainFunc(rt.signIn, g.IsUserLoggedOut, g.IsValidCredentials))
	mux.Handle("DELETE /api/users/session", web.ChainFunc(rt.signOut, g.IsUserLoggedIn))
}

// POST /api/users {username, password} -> {message, user}
func (rt *Router) create(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := rt.users.AddOne(r.Context(), body.Username, body.Password)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if err := rt.sessions.SignIn(w, r, user.ID); err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusCreated,
		fmt.Sprintf("Your account was created successfully. You have been logged in as %s", user.Username),
		map[string]interface{}{"user": user})
}

// GET /api/users/session -> {message, user}
func (rt *Router) current(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.sessions.UserID(r)
	if !ok {
		web.WriteMessage(w, http.StatusOK, "You are not signed in.", map[string]interface{}{"user": nil})
		return
	}
	user, err := rt.users.FindOneByUserID(r.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		web.WriteMessage(w, http.StatusOK, "You are not signed in.", map[string]interface{}{"user": nil})
		return
	}
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusOK, fmt.Sprintf("You are signed in as %s.", user.Username),
		map[string]interface{}{"user": user})
}

// POST /api/users/session {username, password} -> {message, user}
func (rt *Router) signIn(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := rt.users.FindOneByUsernameAndPassword(r.Context(), body.Username, body.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		web.WriteError(w, http.StatusUnauthorized, "Invalid user login credentials provided.")
		return
	}
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if err := rt.sessions.SignIn(w, r, user.ID); err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusCreated, "You have logged in successfully.", map[string]interface{}{"user": user})
}

// DELETE /api/users/session -> {message}
func (rt *Router) signOut(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.SignOut(w, r); err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusOK, "You have been logged out successfully.", nil)
}
