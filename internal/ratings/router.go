package ratings

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/freets"
	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/users"
	"github.com/beesaferoot/fritter/internal/web"
)

// Router serves the rating routes
type Router struct {
	ratings    *Collection
	users      *users.Collection
	freets     *freets.Collection
	guard      *Guard
	userGuard  *users.Guard
	freetGuard *freets.Guard
}

// NewRouter creates a new Router instance
func NewRouter(ratings *Collection, userCollection *users.Collection, freetCollection *freets.Collection, guard *Guard, userGuard *users.Guard, freetGuard *freets.Guard) *Router {
	return &Router{
		ratings:    ratings,
		users:      userCollection,
		freets:     freetCollection,
		guard:      guard,
		userGuard:  userGuard,
		freetGuard: freetGuard,
	}
}

// Register mounts the routes on mux
func (rt *Router) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/ratings", http.HandlerFunc(rt.find))
	mux.Handle("POST /api/ratings/{freetId}", web.ChainFunc(rt.rescan,
		rt.userGuard.IsUserLoggedIn, rt.freetGuard.IsFreetExists, rt.freetGuard.IsValidFreetModifier))
	mux.Handle("DELETE /api/ratings/{ratingId}", web.ChainFunc(rt.delete,
		rt.userGuard.IsUserLoggedIn, rt.guard.IsRatingExists, rt.guard.IsValidRatingModifier))
}

// GET /api/ratings?freetId=ID -> rating
// GET /api/ratings?author=USERNAME -> [rating...]
func (rt *Router) find(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	switch {
	case query.Get("freetId") != "":
		raw := query.Get("freetId")
		if id, ok := models.ParseID(raw); ok {
			rating, err := rt.ratings.FindOneByFreetID(r.Context(), id)
			if err == nil {
				web.WriteJSON(w, http.StatusOK, rating)
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				web.InternalError(w, r, err)
				return
			}
		}
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"ratingNotFound": fmt.Sprintf("No rating exists for freet ID %s.", raw),
		})

	case query.Get("author") != "":
		author := query.Get("author")
		if _, err := rt.users.FindOneByUsername(r.Context(), author); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				web.WriteError(w, http.StatusNotFound, map[string]string{
					"userNotFound": fmt.Sprintf("A user with username %s does not exist.", author),
				})
				return
			}
			web.InternalError(w, r, err)
			return
		}
		ratings, err := rt.ratings.FindAllByUsername(r.Context(), author)
		if err != nil {
			web.InternalError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, ratings)

	default:
		web.WriteError(w, http.StatusBadRequest, "Provide a freetId or an author to look up ratings.")
	}
}

// POST /api/ratings/{freetId} -> {message, rating}
func (rt *Router) rescan(w http.ResponseWriter, r *http.Request) {
	freet, ok := freets.FreetFromContext(r.Context())
	if !ok {
		web.InternalError(w, r, errors.New("rescan ran without a checked freet"))
		return
	}
	rating, err := rt.ratings.Rescan(r.Context(), freet)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your freet was rated successfully.", map[string]interface{}{"rating": rating})
}

// DELETE /api/ratings/{ratingId} -> {message}
func (rt *Router) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("ratingId"))
	deleted, err := rt.ratings.DeleteOne(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if !deleted {
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"ratingNotFound": fmt.Sprintf("Rating with rating ID %s does not exist.", id),
		})
		return
	}
	web.WriteMessage(w, http.StatusOK, "The rating was deleted successfully.", nil)
}
