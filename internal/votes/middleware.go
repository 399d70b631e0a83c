package votes

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/web"
)

// Guard holds the vote existence and permission checks
type Guard struct {
	votes    *Collection
	sessions *web.Sessions
}

// NewGuard creates a new Guard instance
func NewGuard(votes *Collection, sessions *web.Sessions) *Guard {
	return &Guard{votes: votes, sessions: sessions}
}

// IsVoteExists checks that the vote named by the voteId path value exists
func (g *Guard) IsVoteExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("voteId")
		if id, ok := models.ParseID(raw); ok {
			_, err := g.votes.FindOneByVoteID(r.Context(), id)
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
			"voteNotFound": fmt.Sprintf("Vote with vote ID %s does not exist.", raw),
		})
	})
}

// IsValidVoteModifier checks that the session user cast the vote.
// It must run after IsVoteExists.
func (g *Guard) IsValidVoteModifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := models.ParseID(r.PathValue("voteId"))
		vote, err := g.votes.FindOneByVoteID(r.Context(), id)
		if err != nil {
			web.InternalError(w, r, err)
			return
		}
		userID, ok := g.sessions.UserID(r)
		if !ok || userID != vote.VoterID {
			web.WriteError(w, http.StatusForbidden, "Cannot modify other users' votes.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsValidVoteBody checks that the body says which way the vote goes
func (g *Guard) IsValidVoteBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body voteBody
		web.PeekJSON(r, &body)
		if body.Upvote == nil {
			web.WriteError(w, http.StatusBadRequest, map[string]string{
				"upvote": "Upvote must be true or false.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
