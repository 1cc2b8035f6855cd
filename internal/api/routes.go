package api

import (
	"github.com/phrazzld/lmsgate/internal/api/middleware"
	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/docs"
	"github.com/phrazzld/lmsgate/internal/store"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Docs      *docs.Registry
	Calendars store.CalendarStore
	Objects   store.ObjectStore
	Authn     *middleware.Authenticator
	Authz     *middleware.Authorizer
}

// Register mounts all routes on rt. Core routes come first, then the
// extensions.
func Register(rt *router.Router, d Deps) {
	registerDocs(rt, d)
	registerCalendar(rt, d)
	registerUMR(rt, d)
	registerObjects(rt, d)
}

func registerDocs(rt *router.Router, d Deps) {
	h := NewDocsHandler(d.Docs)
	g := rt.Group("/v1/docs")
	g.Handle(router.Route{Verb: "GET", Pattern: "/route", Handler: h.Route, Name: "docs.route"})
	g.Handle(router.Route{Verb: "GET", Pattern: "/routes", Handler: h.Routes, Name: "docs.routes"})
}

func registerCalendar(rt *router.Router, d Deps) {
	h := NewCalendarHandler(d.Calendars)
	g := rt.Group("/v1").Group("/cal", d.Authn.TokenRouteAuth)

	selfOrAdmin := d.Authz.RequireSelfOrAdmin("id")
	g.Get("/events/:id", h.Events, selfOrAdmin)
	g.Get("/icalurl/:id", h.ICalURL, selfOrAdmin)
	g.Get("/events", h.Events, d.Authz.ResolveSelf)
	g.Get("/icalurl", h.ICalURL, d.Authz.ResolveSelf)
}

func registerUMR(rt *router.Router, d Deps) {
	h := NewUMRHandler(d.Calendars)
	g := rt.Group("/v1/umr", d.Authn.TokenRouteAuth)
	g.Get("/calendars", h.Calendars)
	g.Get("/calendars/:calendarId", h.Calendar)
	g.Get("/calendar/events", h.Events)
	g.Get("/calendar/:calendarId/events", h.CalendarEvents)
}

func registerObjects(rt *router.Router, d Deps) {
	h := NewObjectsHandler(d.Objects)
	rt.Group("/v1/objects", d.Authn.TokenRouteAuth).Get("/:ref_id", h.Get)
}

// StaleDocs returns the catalog entries whose route is not registered on rt.
func StaleDocs(rt *router.Router, registry *docs.Registry) []docs.Entry {
	routes := rt.Routes()
	refs := make([]docs.RouteRef, 0, len(routes))
	for _, r := range routes {
		refs = append(refs, docs.RouteRef{Verb: r.Verb, Pattern: r.Pattern})
	}
	return registry.Verify(refs)
}
