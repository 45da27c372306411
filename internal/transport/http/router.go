// Package httptransport assembles the public HTTP surface: middleware, feature
// handlers, health probes and the metrics endpoint.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"costumedesk/pkg/platform/middleware/request"
	"costumedesk/pkg/validation"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// Routes groups the handlers mounted by NewRouter. Nil handlers are skipped.
type Routes struct {
	Health   Registrar
	Costumes Registrar
	Poems    Registrar
	// Chat holds long-lived websocket connections and is mounted outside the request timeout.
	Chat Registrar
}

// Config carries the router-level knobs.
type Config struct {
	RequestTimeout time.Duration
	Metrics        *request.Metrics
	Gatherer       prometheus.Gatherer
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(routes Routes, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata)
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(cfg.Metrics, routePattern))

	if routes.Health != nil {
		routes.Health.Register(r)
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)

		if routes.Costumes != nil {
			routes.Costumes.Register(r)
		}
		if routes.Poems != nil {
			routes.Poems.Register(r)
		}
	})

	if routes.Chat != nil {
		routes.Chat.Register(r)
	}

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
