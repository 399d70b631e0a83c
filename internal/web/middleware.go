package web

import (
	"fmt"
	"log"
	"net/http"
)

// Middleware wraps a handler with a precondition or a side effect.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that mw run in the order given, before h.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// ChainFunc is Chain for a plain handler function.
func ChainFunc(h http.HandlerFunc, mw ...Middleware) http.Handler {
	return Chain(h, mw...)
}

// Logger logs each request when debug is set.
func Logger(debug bool) Middleware {
	return func(next http.Handler) http.Handler {
		if !debug {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("api: %s %s", r.Method, r.URL)
			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a panicking handler into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				InternalError(w, r, fmt.Errorf("panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
