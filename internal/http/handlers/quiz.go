package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quizforge/internal/domain"
	"quizforge/internal/scoring"
)

type createQuizRequest struct {
	Topic    string `json:"topic"`
	Username string `json:"username"`
}

// QuizCreate inserts a quiz in the generating state and returns its id
// immediately. Generation itself happens in the worker; the response never
// waits for it.
func (a *App) QuizCreate(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Username = strings.TrimSpace(req.Username)
	if req.Topic == "" || req.Username == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic and username are required")
		return
	}

	quiz := &domain.Quiz{
		Subject:     req.Topic,
		RequestedBy: req.Username,
		Status:      domain.QuizStatusGenerating,
	}
	if err := a.Quizzes.Create(r.Context(), quiz); err != nil {
		a.Logger.Error().Err(err).Msg("create quiz failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create quiz")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"quiz_id": quiz.ID})
}

type questionDTO struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuizStatus is the polling endpoint. 202 while generating, 200 with the
// question set once ready, 500 when generation failed, 404 for unknown ids.
// The correct option and explanation are withheld until review.
func (a *App) QuizStatus(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	if _, err := uuid.Parse(quizID); err != nil {
		// malformed ids never match anything; reject before the uuid cast
		// turns them into a database error
		a.error(w, http.StatusNotFound, "not_found", "quiz not found")
		return
	}
	quiz, err := a.Quizzes.GetByID(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "quiz not found")
			return
		}
		a.Logger.Error().Err(err).Str("quiz_id", quizID).Msg("load quiz failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load quiz")
		return
	}

	switch quiz.Status {
	case domain.QuizStatusGenerating:
		a.json(w, http.StatusAccepted, map[string]any{
			"status":  domain.QuizStatusGenerating,
			"message": "quiz is still being generated",
		})
		return
	case domain.QuizStatusFailed:
		a.json(w, http.StatusInternalServerError, map[string]any{
			"status":  domain.QuizStatusFailed,
			"message": "quiz generation failed",
		})
		return
	}

	questions, err := a.Question.ListByQuizID(r.Context(), quiz.ID)
	if err != nil {
		a.Logger.Error().Err(err).Str("quiz_id", quizID).Msg("load questions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load questions")
		return
	}
	dtos := make([]questionDTO, 0, len(questions))
	for _, q := range questions {
		dtos = append(dtos, questionDTO{ID: q.ID, Text: q.Text, Options: q.Options})
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":    domain.QuizStatusReady,
		"subject":   quiz.Subject,
		"questions": dtos,
	})
}

type submitRequest struct {
	Username  string                    `json:"username"`
	Answers   []scoring.SubmittedAnswer `json:"answers"`
	StartedAt time.Time                 `json:"started_at"`
}

// QuizSubmit scores the submission against the stored answer key and records
// the attempt with its answers atomically.
func (a *App) QuizSubmit(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	if _, err := uuid.Parse(quizID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "quiz not found")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Answers == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "username and answers are required")
		return
	}

	if _, err := a.Quizzes.GetByID(r.Context(), quizID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "quiz not found")
			return
		}
		a.Logger.Error().Err(err).Str("quiz_id", quizID).Msg("load quiz failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load quiz")
		return
	}

	questions, err := a.Question.ListByQuizID(r.Context(), quizID)
	if err != nil {
		a.Logger.Error().Err(err).Str("quiz_id", quizID).Msg("load questions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load questions")
		return
	}

	answerKey := make(map[string]string, len(questions))
	for _, q := range questions {
		answerKey[q.ID] = q.CorrectOption
	}
	score, results := scoring.Score(req.Answers, answerKey)

	now := time.Now().UTC()
	startedAt := req.StartedAt
	if startedAt.IsZero() || startedAt.After(now) {
		startedAt = now
	}
	attempt := &domain.Attempt{
		QuizID:         quizID,
		Username:       req.Username,
		Score:          score,
		TotalQuestions: len(questions),
		AttemptedAt:    startedAt,
		CompletedAt:    now,
	}
	answers := make([]domain.Answer, 0, len(results))
	for _, res := range results {
		answers = append(answers, domain.Answer{
			QuestionID:     res.QuestionID,
			SelectedOption: res.SelectedOption,
			IsCorrect:      res.IsCorrect,
		})
	}
	if err := a.Attempts.CreateWithAnswers(r.Context(), attempt, answers); err != nil {
		a.Logger.Error().Err(err).Str("quiz_id", quizID).Msg("persist attempt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record attempt")
		return
	}
	if a.Metrics != nil {
		a.Metrics.SubmissionsTotal.Inc()
	}

	a.json(w, http.StatusOK, map[string]any{
		"score":      score,
		"total":      len(questions),
		"attempt_id": attempt.ID,
	})
}
