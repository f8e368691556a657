package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/cloner-service/internal/delivery/http/handler"
	"github.com/user/cloner-service/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

// New wires the routes. requestTimeout bounds a whole request, including the
// browser capture and the AI call.
func New(h *handler.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealthCheck)
	r.Post("/clone-website", h.HandleCloneWebsite)
	r.Get("/clones", h.HandleRecentClones)

	return r
}
