// Package router is a thin layer over http.ServeMux (Go 1.22 method
// patterns) adding middleware chains and route groups.
package router

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers routes on a shared ServeMux. Middleware attached to the
// router applies to every route registered through it; groups extend the
// chain without affecting the parent.
type Router struct {
	mux   *http.ServeMux
	chain []Middleware
}

// New creates a router with the given global middleware.
func New(mw ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), chain: mw}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Group returns a router sharing the same mux whose routes carry the parent
// chain plus the given middleware.
func (r *Router) Group(mw ...Middleware) *Router {
	return &Router{
		mux:   r.mux,
		chain: append(slices.Clone(r.chain), mw...),
	}
}

// Handle registers a handler for the method and pattern, wrapped in the
// router chain followed by any route-specific middleware.
func (r *Router) Handle(method, pattern string, h http.Handler, mw ...Middleware) {
	chain := append(slices.Clone(r.chain), mw...)
	// Outermost middleware is the first one listed.
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	r.mux.Handle(method+" "+pattern, h)
}

func (r *Router) Get(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, mw...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, mw...)
}

func (r *Router) Patch(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPatch, pattern, h, mw...)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, mw...)
}
