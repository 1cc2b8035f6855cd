// Package router maps (verb, path) pairs to handlers through a tree of route
// groups, and turns every outcome of a handler into a response envelope.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/lmsgate/internal/api/shared"
)

// HandlerFunc handles a routed request. Returning an error that has not been
// emitted lets the router render it.
type HandlerFunc func(c *Ctx) error

// Middleware wraps a HandlerFunc. A middleware ends dispatch by emitting a
// response or returning an error instead of calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// Route is a single registration.
type Route struct {
	Verb       string
	Pattern    string
	Middleware []Middleware
	Handler    HandlerFunc
	Name       string
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Verb    string
	Pattern string
	Group   string
	Name    string
}

// Options configures a Router.
type Options struct {
	Logger *slog.Logger
	// ForbiddenStatus replaces the status of Forbidden errors that carry no
	// explicit status. Zero keeps 401.
	ForbiddenStatus int
	// ExposeTrace includes the stack trace in fault envelopes.
	ExposeTrace bool
}

type registration struct {
	info  RouteInfo
	names []string
	chain HandlerFunc
}

// Router collects groups and routes and builds the http.Handler serving them.
type Router struct {
	opts   Options
	logger *slog.Logger

	httpMiddleware []func(http.Handler) http.Handler
	registrations  []registration
	seen           map[string]RouteInfo
	errs           []error
}

// New creates an empty Router.
func New(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		opts:   opts,
		logger: log,
		seen:   make(map[string]RouteInfo),
	}
}

// Use adds net/http middleware that runs before route matching.
func (rt *Router) Use(mw ...func(http.Handler) http.Handler) {
	rt.httpMiddleware = append(rt.httpMiddleware, mw...)
}

// Group starts a route group below prefix.
func (rt *Router) Group(prefix string, mw ...Middleware) *Group {
	return &Group{router: rt, prefix: JoinPath(prefix), middleware: mw}
}

// Routes returns the registered routes in registration order.
func (rt *Router) Routes() []RouteInfo {
	routes := make([]RouteInfo, 0, len(rt.registrations))
	for _, reg := range rt.registrations {
		routes = append(routes, reg.info)
	}
	return routes
}

// Handler builds the dispatcher. It fails when registrations conflicted.
// Panics anywhere below it, including in middleware added with Use, become
// UnhandledFault envelopes.
func (rt *Router) Handler() (http.Handler, error) {
	if len(rt.errs) > 0 {
		return nil, errors.Join(rt.errs...)
	}

	mux := chi.NewRouter()
	mux.Use(rt.recoverer)
	mux.Use(rt.httpMiddleware...)
	mux.NotFound(rt.noRoute)
	mux.MethodNotAllowed(rt.noRoute)

	for _, reg := range rt.registrations {
		mux.Method(reg.info.Verb, toChiPattern(reg.info.Pattern), rt.serve(reg))
	}
	return mux, nil
}

func (rt *Router) noRoute(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithEnvelope(w, r, http.StatusNotFound, shared.ErrNoRoute().Envelope())
}

func (rt *Router) register(group *Group, route Route) {
	verb := strings.ToUpper(strings.TrimSpace(route.Verb))
	pattern := JoinPath(group.prefix, route.Pattern)
	info := RouteInfo{Verb: verb, Pattern: pattern, Group: group.prefix, Name: route.Name}

	switch {
	case verb == "":
		rt.errs = append(rt.errs, fmt.Errorf("route %s: empty verb", pattern))
		return
	case route.Handler == nil:
		rt.errs = append(rt.errs, fmt.Errorf("route %s %s: nil handler", verb, pattern))
		return
	}

	key := routeKey(verb, pattern)
	if prev, dup := rt.seen[key]; dup {
		rt.errs = append(rt.errs, fmt.Errorf("route %s %s conflicts with %s %s",
			verb, pattern, prev.Verb, prev.Pattern))
		return
	}
	rt.seen[key] = info

	chain := route.Handler
	for i := len(route.Middleware) - 1; i >= 0; i-- {
		chain = route.Middleware[i](chain)
	}
	for g := group; g != nil; g = g.parent {
		for i := len(g.middleware) - 1; i >= 0; i-- {
			chain = g.middleware[i](chain)
		}
	}

	rt.registrations = append(rt.registrations, registration{
		info:  info,
		names: paramNames(pattern),
		chain: chain,
	})
}

// Group is a set of routes sharing a prefix and middleware.
type Group struct {
	router     *Router
	parent     *Group
	prefix     string
	middleware []Middleware
}

// Group nests a group below g. Its middleware runs after g's.
func (g *Group) Group(prefix string, mw ...Middleware) *Group {
	return &Group{
		router:     g.router,
		parent:     g,
		prefix:     JoinPath(g.prefix, prefix),
		middleware: mw,
	}
}

// Prefix returns the normalized group prefix.
func (g *Group) Prefix() string {
	return g.prefix
}

// Handle registers route below the group prefix.
func (g *Group) Handle(route Route) {
	g.router.register(g, route)
}

// Get registers a GET route.
func (g *Group) Get(pattern string, h HandlerFunc, mw ...Middleware) {
	g.Handle(Route{Verb: http.MethodGet, Pattern: pattern, Handler: h, Middleware: mw})
}

// Post registers a POST route.
func (g *Group) Post(pattern string, h HandlerFunc, mw ...Middleware) {
	g.Handle(Route{Verb: http.MethodPost, Pattern: pattern, Handler: h, Middleware: mw})
}

// Put registers a PUT route.
func (g *Group) Put(pattern string, h HandlerFunc, mw ...Middleware) {
	g.Handle(Route{Verb: http.MethodPut, Pattern: pattern, Handler: h, Middleware: mw})
}

// Patch registers a PATCH route.
func (g *Group) Patch(pattern string, h HandlerFunc, mw ...Middleware) {
	g.Handle(Route{Verb: http.MethodPatch, Pattern: pattern, Handler: h, Middleware: mw})
}

// Delete registers a DELETE route.
func (g *Group) Delete(pattern string, h HandlerFunc, mw ...Middleware) {
	g.Handle(Route{Verb: http.MethodDelete, Pattern: pattern, Handler: h, Middleware: mw})
}
