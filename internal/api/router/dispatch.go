package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/redact"
)

func (rt *Router) serve(reg registration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newCtx(w, r, reg.info, reg.names, rt.logger)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			rt.fault(c, rec)
		}()

		rt.finish(c, reg.chain(c))
	}
}

// recoverer catches panics raised by net/http middleware outside the route
// chain and renders them like a routed panic.
func (rt *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			c := newCtx(ww, r, RouteInfo{Verb: r.Method}, nil, rt.logger)
			c.responded = ww.Status() != 0
			rt.fault(c, rec)
		}()

		next.ServeHTTP(ww, r)
	})
}

// finish renders whatever the chain left behind.
func (rt *Router) finish(c *Ctx, err error) {
	switch {
	case err != nil && c.Responded():
		if !errors.Is(err, ErrAlreadyResponded) {
			c.Logger().Warn("handler failed after responding", slog.Any("error", redact.Error(err)))
		}
	case err != nil:
		rt.renderError(c, err)
	case !c.Responded():
		c.Logger().Error("route finished without a response")
		noResponse := shared.New(shared.KindUnhandledFault, "", shared.MsgNoResponse)
		_ = c.emit(noResponse.HTTPStatus(), noResponse.Envelope())
	}
}

// renderError maps err to an envelope. Errors without a kind become
// DomainOperationFailed with a redacted message.
func (rt *Router) renderError(c *Ctx, err error) {
	e, ok := shared.AsError(err)
	if !ok {
		e = shared.Wrap(shared.KindDomainOperationFailed, "", redact.String(err.Error()), err)
	}
	if e.Kind == shared.KindForbidden && e.Status == 0 && rt.opts.ForbiddenStatus != 0 {
		e = e.WithStatus(rt.opts.ForbiddenStatus)
	}

	status := e.HTTPStatus()
	log := c.Logger().With(
		slog.String("kind", e.Kind.String()),
		slog.Int("status", status),
		slog.Any("error", redact.Error(err)),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}

	_ = c.emit(status, e.Envelope())
}

// fault renders a recovered panic as an UnhandledFault.
func (rt *Router) fault(c *Ctx, rec any) {
	file, line := panicSite()
	trace := string(debug.Stack())

	var cause error
	switch v := rec.(type) {
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}
	message := redact.String(cause.Error())

	logger.Critical(c.Context(), c.Logger(), "unhandled fault",
		slog.String("message", message),
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("trace", trace),
	)

	if c.Responded() {
		return
	}
	if !rt.opts.ExposeTrace {
		trace = ""
	}
	detail := shared.NewFaultDetail(message, 0, file, line, trace)
	f := shared.UnhandledFault(detail, cause)
	_ = c.emit(f.HTTPStatus(), f.Envelope())
}

// panicSite returns the location of the first non-runtime frame below
// runtime.gopanic on the current stack.
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	panicking := false
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			panicking = true
		case panicking && !strings.HasPrefix(frame.Function, "runtime."):
			return frame.File, frame.Line
		}
		if !more {
			return "", 0
		}
	}
}
