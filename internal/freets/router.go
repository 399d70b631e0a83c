package freets

import (
	"fmt"
	"net/http"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// Router serves the freet routes
type Router struct {
	freets   *Collection
	sessions *web.Sessions
	guard    *Guard
	loggedIn web.Middleware
}

// NewRouter creates a new Router instance. loggedIn is the guard that
// rejects anonymous requests.
func NewRouter(freets *Collection, sessions *web.Sessions, guard *Guard, loggedIn web.Middleware) *Router {
	return &Router{
		freets:   freets,
		sessions: sessions,
		guard:    guard,
		loggedIn: loggedIn,
	}
}

// Register mounts the routes on mux
func (rt *Router) Register(mux *http.ServeMux) {
	g := rt.guard
	mux.Handle("GET /api/freets", http.HandlerFunc(rt.list))
	mux.Handle("POST /api/freets", web.ChainFunc(rt.create, rt.loggedIn, g.IsValidFreetContent))
	mux.Handle("GET /api/freets/{freetId}", web.ChainFunc(rt.show, g.IsFreetExists))
	mux.Handle("PATCH /api/freets/{freetId}", web.ChainFunc(rt.update, rt.loggedIn, g.IsFreetExists, g.IsValidFreetModifier, g.IsValidFreetContent))
	mux.Handle("DELETE /api/freets/{freetId}", web.ChainFunc(rt.delete, rt.loggedIn, g.IsFreetExists, g.IsValidFreetModifier))
}

type contentBody struct {
	Content string `json:"content"`
}

// GET /api/freets?author=USERNAME -> [freet...]
func (rt *Router) list(w http.ResponseWriter, r *http.Request) {
	var (
		freets []models.Freet
		err    error
	)
	if author := r.URL.Query().Get("author"); author != "" {
		freets, err = rt.freets.FindAllByUsername(r.Context(), author)
	} else {
		freets, err = rt.freets.FindAll(r.Context())
	}
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, freets)
}

// POST /api/freets {content} -> {message, freet}
func (rt *Router) create(w http.ResponseWriter, r *http.Request) {
	var body contentBody
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, _ := rt.sessions.UserID(r)
	freet, err := rt.freets.AddOne(r.Context(), userID, body.Content)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusCreated, "Your freet was created successfully.", map[string]interface{}{"freet": freet})
}

// GET /api/freets/{freetId} -> freet
func (rt *Router) show(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("freetId"))
	freet, err := rt.freets.FindOneByFreetID(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, freet)
}

// PATCH /api/freets/{freetId} {content} -> {message, freet}
func (rt *Router) update(w http.ResponseWriter, r *http.Request) {
	var body contentBody
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, _ := models.ParseID(r.PathValue("freetId"))
	freet, err := rt.freets.UpdateOne(r.Context(), id, body.Content)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your freet was updated successfully.", map[string]interface{}{"freet": freet})
}

// DELETE /api/freets/{freetId} -> {message}
func (rt *Router) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("freetId"))
	deleted, err := rt.freets.DeleteOne(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if !deleted {
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"freetNotFound": fmt.Sprintf("Freet with freet ID %s does not exist.", id),
		})
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your freet was deleted successfully.", nil)
}
