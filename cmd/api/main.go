package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"quizforge/internal/adapter/repo"
	"quizforge/internal/http/handlers"
	httpapi "quizforge/internal/http/httpapi"
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

	if cfg.MigrateOnStart {
		if err := infra.Migrate(cfg); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	metrics := infra.NewMetrics(registry)

	quizzes := repo.NewQuizRepository(pool)
	questions := repo.NewQuestionRepository(pool)
	attempts := repo.NewAttemptRepository(pool)

	app := handlers.NewApp(logger, quizzes, questions, attempts, metrics)
	router := httpapi.NewRouter(app, registry)
	server := infra.NewHTTPServer(cfg, router)

	if cfg.WorkerEnabled {
		generator, err := newGenerator(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure question provider")
		}
		w := worker.New(worker.Options{
			Quizzes:         quizzes,
			Generator:       generator,
			Logger:          logger,
			Metrics:         metrics,
			QuestionCount:   cfg.QuestionCount,
			GenerateTimeout: cfg.GenerateTimeout,
			PollInterval:    cfg.WorkerPoll,
		})
		go func() {
			if err := w.Run(ctx, cfg.WorkerCount); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("worker stopped with error")
			}
		}()
		logger.Info().Int("workers", cfg.WorkerCount).Str("provider", generator.Name()).Msg("generation worker started")
	}

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
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
