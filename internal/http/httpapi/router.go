package httpapi

import (
	stdhttp "net/http"

	"quizforge/internal/http/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the chi router. Metrics exposure is optional so tests can
// skip registry setup.
func NewRouter(app *handlers.App, gatherer prometheus.Gatherer) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/quiz", func(r chi.Router) {
		r.Post("/", app.QuizCreate)
		r.Get("/{quizID}/status", app.QuizStatus)
		r.Post("/{quizID}/submit", app.QuizSubmit)
	})

	r.Get("/attempt/{attemptID}/results", app.AttemptResults)
	r.Get("/history", app.History)
	r.Post("/users/check", app.UserCheck)

	if gatherer != nil {
		r.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
