package handlers

import (
	"encoding/json"
	"net/http"

	"quizforge/internal/domain"
	"quizforge/internal/infra"
)

// App is the handler container. All handlers are methods on it so routing
// stays declarative and dependencies stay explicit.
type App struct {
	Logger   infra.Logger
	Quizzes  domain.QuizRepository
	Question domain.QuestionRepository
	Attempts domain.AttemptRepository
	Metrics  *infra.Metrics
}

func NewApp(logger infra.Logger, quizzes domain.QuizRepository, questions domain.QuestionRepository, attempts domain.AttemptRepository, metrics *infra.Metrics) *App {
	return &App{
		Logger:   logger,
		Quizzes:  quizzes,
		Question: questions,
		Attempts: attempts,
		Metrics:  metrics,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the uniform error body. Messages stay generic; details belong
// in the log, not the response.
func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error":   errCode,
		"message": message,
	})
}
