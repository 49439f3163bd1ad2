// README: API gateway; holds service dependencies and builds the HTTP handler.
package http

import (
	"net/http"
	"time"

	"shutterplan/internal/ai"
	"shutterplan/internal/http/handlers"
	"shutterplan/internal/observe"
)

// ServerDeps wires the API. Usage, MetricsHandler, and HealthChecks are optional.
type ServerDeps struct {
	Catalog        *ai.Catalog
	Availability   handlers.Availability
	Planner        handlers.Planner
	Compare        handlers.CompareRunner
	Usage          handlers.UsageSummarizer
	Metrics        *observe.Metrics
	MetricsHandler http.Handler
	HealthChecks   map[string]handlers.HealthCheck
	RequestTimeout time.Duration
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.deps)
}
