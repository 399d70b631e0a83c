package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "fritter-session"
	userIDKey   = "userId"
)

// Sessions stores the signed-in user id in a signed cookie
type Sessions struct {
	store sessions.Store
}

// NewSessions creates a cookie backed session store keyed by secret
func NewSessions(secret []byte, secure bool) *Sessions {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// UserID returns the id of the signed-in user, if any.
func (s *Sessions) UserID(r *http.Request) (uuid.UUID, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return uuid.Nil, false
	}
	raw, ok := session.Values[userIDKey].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SignIn records id as the signed-in user.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, id uuid.UUID) error {
	// a cookie that fails to decode still yields a fresh session
	session, _ := s.store.Get(r, sessionName)
	session.Values[userIDKey] = id.String()
	return session.Save(r, w)
}

// SignOut clears the session cookie.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
