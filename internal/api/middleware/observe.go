package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/config"
	"github.com/phrazzld/lmsgate/internal/metrics"
)

const (
	codeRateLimited = "rate_limited"
	msgRateLimited  = "Too many requests, slow down."
)

func passthrough(next http.Handler) http.Handler {
	return next
}

// Metrics records count, status and latency per matched route pattern.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return passthrough
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			m.RequestStarted()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.RequestFinished(r.Method, route, status, time.Since(start))
		})
	}
}

// RateLimit limits requests per client IP. Rejections get a 429 envelope.
// A disabled or zero limit mounts nothing.
func RateLimit(cfg config.RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	if cfg.Disabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return passthrough
	}

	return httprate.Limit(
		cfg.Requests,
		time.Duration(cfg.WindowSeconds)*time.Second,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if m != nil {
				m.RateLimited()
			}
			shared.RespondWithEnvelope(w, r, http.StatusTooManyRequests,
				shared.Envelope{Msg: msgRateLimited, Code: codeRateLimited})
		}),
	)
}

// CORS allows browser clients from the configured origins. No origins
// mounts nothing.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return passthrough
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{TraceHeader},
		MaxAge:         300,
	})
}
