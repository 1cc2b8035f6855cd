package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
)

// ErrAlreadyResponded is returned by Success and Halt once a response was sent.
var ErrAlreadyResponded = errors.New("response already sent")

// Param is a bound path parameter.
type Param struct {
	Name  string
	Value string
}

// Ctx is the per-request state handed to middleware and handlers.
type Ctx struct {
	w     http.ResponseWriter
	r     *http.Request
	route RouteInfo
	names []string
	base  *slog.Logger

	responded bool
	status    int
}

func newCtx(w http.ResponseWriter, r *http.Request, route RouteInfo, names []string, base *slog.Logger) *Ctx {
	return &Ctx{
		w:     w,
		r:     r,
		route: route,
		names: names,
		base:  base,
	}
}

// Success emits data with status 200.
func (c *Ctx) Success(data any) error {
	return c.emit(http.StatusOK, shared.NewEnvelope(data, ""))
}

// Halt emits data with the given status. An empty restCode becomes "halt".
func (c *Ctx) Halt(status int, data any, restCode string) error {
	if restCode == "" {
		restCode = shared.CodeHalt
	}
	return c.emit(status, shared.NewEnvelope(data, restCode))
}

func (c *Ctx) emit(status int, env shared.Envelope) error {
	if c.responded {
		return ErrAlreadyResponded
	}
	c.responded = true
	c.status = status
	shared.RespondWithEnvelope(c.w, c.r, status, env)
	return nil
}

// Responded reports whether a response has been emitted.
func (c *Ctx) Responded() bool {
	return c.responded
}

// Status returns the emitted status, or 0.
func (c *Ctx) Status() int {
	return c.status
}

// Param returns the value of a path parameter, or "".
func (c *Ctx) Param(name string) string {
	return chi.URLParam(c.r, name)
}

// Params returns all path parameters in the order the pattern declares them.
func (c *Ctx) Params() []Param {
	params := make([]Param, 0, len(c.names))
	for _, name := range c.names {
		params = append(params, Param{Name: name, Value: chi.URLParam(c.r, name)})
	}
	return params
}

// Query returns the first value of a query parameter.
func (c *Ctx) Query(name string) string {
	return c.r.URL.Query().Get(name)
}

// Request returns the underlying request, carrying the current context.
func (c *Ctx) Request() *http.Request {
	return c.r
}

// Context returns the request context.
func (c *Ctx) Context() context.Context {
	return c.r.Context()
}

// WithValue stores a value on the request context seen by later middleware
// and the handler.
func (c *Ctx) WithValue(key, value any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, value))
}

// SetContext replaces the request context.
func (c *Ctx) SetContext(ctx context.Context) {
	c.r = c.r.WithContext(ctx)
}

// Route describes the matched route.
func (c *Ctx) Route() RouteInfo {
	return c.route
}

// Logger returns the logger on the request context, or the router's, annotated
// with the matched route.
func (c *Ctx) Logger() *slog.Logger {
	return logger.FromContextOrDefault(c.r.Context(), c.base).With(
		slog.String("route", c.route.Pattern),
		slog.String("verb", c.route.Verb),
	)
}
