package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parley-chat/parley/backend/internal/setup"
	"github.com/parley-chat/parley/shared/domain"
	mw "github.com/parley-chat/parley/shared/middleware"
	"github.com/parley-chat/parley/shared/middleware/metrics"
	rl "github.com/parley-chat/parley/shared/middleware/ratelimiter"
)

// New creates the chi router with all the routes.
// Rate limiters set with Use limit requests for every route of that group combined.
func New(deps *setup.Dependencies) *chi.Mux {
	cfg := deps.Config.Public
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", mw.RequestIdHeader},
		ExposedHeaders: []string{mw.RequestIdHeader},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(cfg.HTTP.SecureHeaders))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.NeedAuth())
		if cfg.RateLimit.RPS > 0 {
			r.Use(mw.RateLimit(rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL), mw.ByUser))
		}

		containers := []struct {
			prefix string
			kind   domain.ContainerKind
		}{
			{"/channels", domain.KindChannel},
			{"/dms", domain.KindDm},
		}
		for _, c := range containers {
			r.Route(c.prefix+"/{id}/messages", func(r chi.Router) {
				r.Get("/", h.ListMessages(c.kind))
				r.Post("/", h.SendMessage(c.kind))
				r.Post("/later", h.SendMessageLater(c.kind))
			})
		}

		r.Route("/messages/{message}", func(r chi.Router) {
			r.Put("/", h.EditMessage)
			r.Delete("/", h.RemoveMessage)
			r.Post("/share", h.ShareMessage)
			r.Post("/react", h.React())
			r.Post("/unreact", h.Unreact())
			r.Post("/pin", h.PinMessage)
			r.Post("/unpin", h.UnpinMessage)
		})

		r.Route("/channels/{id}/standup", func(r chi.Router) {
			r.Post("/start", h.StartStandup)
			r.Get("/active", h.ActiveStandup)
			r.Post("/send", h.SendStandup)
		})

		r.Get("/notifications", h.Notifications)
		r.Get("/search", h.Search)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
