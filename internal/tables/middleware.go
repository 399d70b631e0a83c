package tables

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// Guard holds the table existence, permission and naming checks
type Guard struct {
	tables   *Collection
	sessions *web.Sessions
}

// NewGuard creates a new Guard instance
func NewGuard(tables *Collection, sessions *web.Sessions) *Guard {
	return &Guard{tables: tables, sessions: sessions}
}

type tablenameBody struct {
	Tablename *string `json:"tablename"`
}

// IsTableExists checks that the table named by the tableId path value exists.
// A malformed id is reported the same way as a missing table.
func (g *Guard) IsTableExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("tableId")
		if id, ok := models.ParseID(raw); ok {
			_, err := g.tables.FindOneByTableID(r.Context(), id)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				web.InternalError(w, r, err)
				return
			}
		}
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"tableNotFound": fmt.Sprintf("Table with table ID %s does not exist.", raw),
		})
	})
}

// IsValidTableModifier checks that the session user administers the table.
// It must run after IsTableExists.
func (g *Guard) IsValidTableModifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := models.ParseID(r.PathValue("tableId"))
		table, err := g.tables.FindOneByTableID(r.Context(), id)
		if err != nil {
			web.InternalError(w, r, err)
			return
		}
		userID, ok := g.sessions.UserID(r)
		if !ok || userID != table.AdminID {
			web.WriteError(w, http.StatusForbidden, "Cannot modify the table due to insufficient permissions.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsValidTablename checks that the body carries a nonblank tablename. On
// PATCH an absent or blank tablename is allowed and leaves the name unchanged.
func (g *Guard) IsValidTablename(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body tablenameBody
		web.PeekJSON(r, &body)
		blank := body.Tablename == nil || strings.TrimSpace(*body.Tablename) == ""
		if blank && r.Method == http.MethodPatch {
			next.ServeHTTP(w, r)
			return
		}
		if blank {
			web.WriteError(w, http.StatusBadRequest, map[string]string{
				"tablename": "Tablename must be a nonempty string.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsTablenameNotAlreadyInUse checks that no other table has the requested name
func (g *Guard) IsTablenameNotAlreadyInUse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body tablenameBody
		web.PeekJSON(r, &body)
		if body.Tablename == nil || strings.TrimSpace(*body.Tablename) == "" {
			next.ServeHTTP(w, r)
			return
		}
		table, err := g.tables.FindOneByTable(r.Context(), *body.Tablename)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			web.InternalError(w, r, err)
			return
		}
		if table.ID.String() == r.PathValue("tableId") {
			next.ServeHTTP(w, r)
			return
		}
		web.WriteError(w, http.StatusConflict, map[string]string{
			"tablename": "A table with this name already exists.",
		})
	})
}
