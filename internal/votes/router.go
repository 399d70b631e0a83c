package votes

import (
	"errors"
	"net/http"

	"github.com/beesaferoot/fritter/internal/freets"
	"github.com/beesaferoot/fritter/internal/models"
	"github.com/beesaferoot/fritter/internal/users"
	"github.com/beesaferoot/fritter/internal/web"
)

// Router serves the vote routes
type Router struct {
	votes      *Collection
	sessions   *web.Sessions
	guard      *Guard
	userGuard  *users.Guard
	freetGuard *freets.Guard
}

// NewRouter creates a new Router instance
func NewRouter(votes *Collection, sessions *web.Sessions, guard *Guard, userGuard *users.Guard, freetGuard *freets.Guard) *Router {
	return &Router{
		votes:      votes,
		sessions:   sessions,
		guard:      guard,
		userGuard:  userGuard,
		freetGuard: freetGuard,
	}
}

// Register mounts the routes on mux
func (rt *Router) Register(mux *http.ServeMux) {
	g := rt.guard
	loggedIn := rt.userGuard.IsUserLoggedIn
	mux.Handle("POST /api/votes", web.ChainFunc(rt.create, loggedIn, rt.freetGuard.IsFreetExists, g.IsValidVoteBody))
	mux.Handle("GET /api/votes", web.ChainFunc(rt.list, rt.freetGuard.IsFreetExists))
	mux.Handle("PATCH /api/votes/{voteId}", web.ChainFunc(rt.update, loggedIn, g.IsVoteExists, g.IsValidVoteModifier, g.IsValidVoteBody))
	mux.Handle("DELETE /api/votes/{voteId}", web.ChainFunc(rt.delete, loggedIn, g.IsVoteExists, g.IsValidVoteModifier))
}

type voteBody struct {
	FreetID string `json:"freetId"`
	Upvote  *bool  `json:"upvote"`
}

// POST /api/votes {freetId, upvote} -> {message, vote, score}
func (rt *Router) create(w http.ResponseWriter, r *http.Request) {
	var body voteBody
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	freet, ok := freets.FreetFromContext(r.Context())
	if !ok {
		web.InternalError(w, r, errors.New("vote ran without a checked freet"))
		return
	}
	userID, _ := rt.sessions.UserID(r)
	vote, err := rt.votes.AddOne(r.Context(), userID, freet.ID, *body.Upvote)
	if err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			web.WriteError(w, http.StatusConflict, "You have already voted on this freet.")
			return
		}
		web.InternalError(w, r, err)
		return
	}
	rt.writeVote(w, r, http.StatusCreated, "Your vote was recorded successfully.", vote)
}

// GET /api/votes?freetId=ID -> {score, votes}
func (rt *Router) list(w http.ResponseWriter, r *http.Request) {
	freet, ok := freets.FreetFromContext(r.Context())
	if !ok {
		web.InternalError(w, r, errors.New("vote listing ran without a checked freet"))
		return
	}
	tally, err := rt.votes.Tally(r.Context(), freet.ID)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, tally)
}

// PATCH /api/votes/{voteId} {upvote} -> {message, vote, score}
func (rt *Router) update(w http.ResponseWriter, r *http.Request) {
	var body voteBody
	if err := web.DecodeJSON(r, &body); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, _ := models.ParseID(r.PathValue("voteId"))
	vote, err := rt.votes.UpdateOne(r.Context(), id, *body.Upvote)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	rt.writeVote(w, r, http.StatusOK, "Your vote was updated successfully.", vote)
}

// writeVote responds with vote and the new score of its freet
func (rt *Router) writeVote(w http.ResponseWriter, r *http.Request, status int, msg string, vote *models.Vote) {
	score, err := rt.votes.Score(r.Context(), vote.FreetID)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	web.WriteMessage(w, status, msg, map[string]interface{}{"vote": vote, "score": score})
}

// DELETE /api/votes/{voteId} -> {message}
func (rt *Router) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := models.ParseID(r.PathValue("voteId"))
	deleted, err := rt.votes.DeleteOne(r.Context(), id)
	if err != nil {
		web.InternalError(w, r, err)
		return
	}
	if !deleted {
		web.WriteError(w, http.StatusNotFound, map[string]string{
			"voteNotFound": "Vote with vote ID " + id.String() + " does not exist.",
		})
		return
	}
	web.WriteMessage(w, http.StatusOK, "Your vote was removed successfully.", nil)
}
