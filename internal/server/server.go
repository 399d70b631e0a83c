// Package server assembles the collections, guards and routers into the
// fritter HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/config"
	"github.com/beesaferoot/fritter/internal/freets"
	"github.com/beesaferoot/fritter/internal/ratings"
	"github.com/beesaferoot/fritter/internal/tables"
	"github.com/beesaferoot/fritter/internal/users"
	"github.com/beesaferoot/fritter/internal/votes"
	"github.com/beesaferoot/fritter/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Server is the fritter HTTP API
type Server struct {
	addr    string
	debug   bool
	handler http.Handler
}

// New wires every collection on db behind its routes
func New(cfg *config.Config, db *gorm.DB) *Server {
	sessions := web.NewSessions([]byte(cfg.SessionSecret), false)

	userCollection := users.NewCollection(db)
	ratingCollection := ratings.NewCollection(db)
	tableCollection := tables.NewCollection(db)
	voteCollection := votes.NewCollection(db)
	freetCollection := freets.NewCollection(db, ratingCollection, voteCollection)

	userGuard := users.NewGuard(userCollection, sessions)
	freetGuard := freets.NewGuard(freetCollection, sessions)

	mux := http.NewServeMux()
	users.NewRouter(userCollection, sessions, userGuard).Register(mux)
	freets.NewRouter(freetCollection, sessions, freetGuard, userGuard.IsUserLoggedIn).Register(mux)
	ratings.NewRouter(ratingCollection, userCollection, freetCollection,
		ratings.NewGuard(ratingCollection, sessions), userGuard, freetGuard).Register(mux)
	tables.NewRouter(tableCollection, userCollection, sessions,
		tables.NewGuard(tableCollection, sessions), userGuard).Register(mux)
	votes.NewRouter(voteCollection, sessions,
		votes.NewGuard(voteCollection, sessions), userGuard, freetGuard).Register(mux)

	return &Server{
		addr:    cfg.Addr,
		debug:   cfg.Debug,
		handler: web.Chain(mux, web.Logger(cfg.Debug), web.Recover),
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	if s.debug {
		log.Printf("server: shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
