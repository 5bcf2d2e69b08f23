// The worker binary runs the generation pipeline without the HTTP API, for
// deployments that scale generation independently. Disable the in-process
// worker on the API side (WORKER_ENABLED=false) when using it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quizforge/internal/adapter/repo"
	"quizforge/internal/infra"
	"quizforge/internal/providers/question"
	"quizforge/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	generator, err := newGenerator(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure question provider")
	}

	registry := prometheus.NewRegistry()
	w := worker.New(worker.Options{
		Quizzes:         repo.NewQuizRepository(pool),
		Generator:       generator,
		Logger:          logger,
		Metrics:         infra.NewMetrics(registry),
		QuestionCount:   cfg.QuestionCount,
		GenerateTimeout: cfg.GenerateTimeout,
		PollInterval:    cfg.WorkerPoll,
	})

	// the API binary serves /metrics off its router; here nothing else listens,
	// so the generation counters need their own port to be scrapable
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("worker: metrics listener failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("workers", cfg.WorkerCount).Str("provider", generator.Name()).Str("metrics_port", cfg.MetricsPort).Msg("worker: started")
	if err := w.Run(ctx, cfg.WorkerCount); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func metricsMux(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func newGenerator(cfg *infra.Config) (question.Generator, error) {
	switch cfg.QuestionProvider {
	case "openai":
		return question.NewOpenAIGenerator(question.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	default:
		return question.NewGeminiGenerator(question.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	}
}
