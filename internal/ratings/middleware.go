package ratings

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// Guard holds the rating existence and permission checks
type Guard struct {
	ratings  *Collection
	sessions *web.Sessions
}

// NewGuard creates a new Guard instance
func NewGuard(ratings *Collection, sessions *web.Sessions) *Guard {
	return &Guard{ratings: ratings, sessions: sessions}
}

// IsRatingExists checks that the rating named by the ratingId path value exists
func (g *Guard) IsRatingExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("ratingId")
		if id, ok := models.ParseID(raw); ok {
			_, err := g.ratings.FindOneByRatingID(r.Context(), id)
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
			"ratingNotFound": fmt.Sprintf("Rating with rating ID %s does not exist.", raw),
		})
	})
}

// IsValidRatingModifier checks that the session user authored the rated freet
func (g *Guard) IsValidRatingModifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := models.ParseID(r.PathValue("ratingId"))
		rating, err := g.ratings.FindOneByRatingID(r.Context(), id)
		if err != nil {
			web.InternalError(w, r, err)
			return
		}
		userID, ok := g.sessions.UserID(r)
		if !ok || userID != rating.AuthorID {
			web.WriteError(w, http.StatusForbidden, "Cannot modify other users' ratings.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
