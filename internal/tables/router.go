package tables

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/users"
	"github.com/beesaferoot/fritter/internal/web"
)

// Router serves the table routes
type Router struct {
	tables    *Collection
	users     *users.Collection
	sessions  *web.Sessions
	guard     *Guard
	userGuard *users.Guard
}

// NewRouter creates a new Router instance
func NewRouter(tables *Collection, userCollection *users.Collection, sessions *web.Sessions, guard *Guard, userGuard *users.Guard) *Router {
	return &Router{
		tables:    tables,
		users:     userCollection,
		sessions:  sessions,
		guard:     guard,
		userGuard: userGuard,
	}
}

// Register mounts the routes on mux
func (rt *Router) Register(mux *http.ServeMux) {
	g := rt.guard
	loggedIn := rt.userGuard.IsUserLoggedIn
	mux.Handle("POST /api/tables", web.ChainFunc(rt.create, loggedIn, g.IsValidTablename, g.IsTablenameNotAlreadyInUse))
	mux.Handle("GET /api/tables", http.HandlerFunc(rt.find))
	mux.Handle("GET /api/tables/{tableId}", web.ChainFunc(rt.show, g.IsTableExists))
	mux.Handle("PATCH /api/tables/{tableId}", web.ChainFunc(rt.update,
		loggedIn, g.IsTableExists, g.IsValidTableModifier, g.IsValidTablename, g.IsTablenameNotAlreadyInUse))
	mux.Handle("DELETE /api/tables/{tableId}", web.ChainFunc(rt.delete, loggedIn, g.IsTableExists, g.IsValidTableModifier))
}

// POST /api/tables {tablename} -> {message, table}
func (rt *Router) create(w http.ResponseWriter, r *http.Request) {
	var body tablenameBody
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, _ := rt.sessions.UserID(r)
	admin, err := rt.users.FindOneByUserID(r.Context(), userID)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	table, err := rt.tables.AddOne(r.Context(), *body.Tablename, admin)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusCreated, "Your table was created successfully.", map[string]interface{}{"table": table})
}

// GET /api/tables?tablename=NAME -> table
// GET /api/tables -> [table...] of the session user
func (rt *Router) find(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("tablename"); name != "" {
		table, err := rt.tables.FindOneByTable(r.Context(), name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				web.WriteError(w, http.StatusNotFound, map[string]string{
					"tableNotFound": fmt.Sprintf("Table with tablename %s does not exist.", name),
				})
				return
			}
			web.InternalError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, table)
		return
	}

	userID, ok := rt.sessions.UserID(r)
	if !ok {
		web.WriteError(w, http.StatusForbidden, "You must be logged in to complete this action.")
		return
	}
	tables, err := rt.tables.FindAllByMember(r.Context(), userID)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, tables)
}

// GET /api/tables/{tableId} -> table
func (rt *Router) show(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("tableId"))
	table, err := rt.tables.FindOneByTableID(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, table)
}

// PATCH /api/tables/{tableId} {tablename?, admin?, users?, mods?, freets?} -> {message, table}
func (rt *Router) update(w http.ResponseWriter, r *http.Request) {
	var details Details
	if err := web.DecodeJSON(r, &details); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, _ := models.ParseID(r.PathValue("tableId"))
	table, err := rt.tables.UpdateOne(r.Context(), id, details)
	if err != nil {
		if errors.Is(err, ErrUnknownReference) {
			web.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your table was updated successfully.", map[string]interface{}{"table": table})
}

// DELETE /api/tables/{tableId} -> {message}
func (rt *Router) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("tableId"))
	deleted, err := rt.tables.DeleteOne(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if !deleted {
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"tableNotFound": fmt.Sprintf("Table with table ID %s does not exist.", id),
		})
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your table was deleted successfully.", nil)
}
