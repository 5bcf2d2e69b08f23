package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quizforge/internal/domain"
)

type reviewDetailDTO struct {
	QuestionID     string   `json:"question_id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	SelectedOption string   `json:"selected_option"`
	CorrectOption  string   `json:"correct_option"`
	IsCorrect      bool     `json:"is_correct"`
	Explanation    string   `json:"explanation"`
}

// AttemptResults returns the full review payload for one attempt, including
// the previously withheld correct options and explanations.
func (a *App) AttemptResults(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	if _, err := uuid.Parse(attemptID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "attempt not found")
		return
	}

	attempt, err := a.Attempts.GetByID(r.Context(), attemptID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "attempt not found")
			return
		}
		a.Logger.Error().Err(err).Str("attempt_id", attemptID).Msg("load attempt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load attempt")
		return
	}

	quiz, err := a.Quizzes.GetByID(r.Context(), attempt.QuizID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Error().Err(err).Str("attempt_id", attemptID).Msg("load quiz failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load attempt")
		return
	}
	subject := "Unknown Subject"
	if quiz != nil {
		subject = quiz.Subject
	}

	answers, err := a.Attempts.ListAnswers(r.Context(), attemptID)
	if err != nil {
		a.Logger.Error().Err(err).Str("attempt_id", attemptID).Msg("load answers failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load answers")
		return
	}

	questionIDs := make([]string, 0, len(answers))
	for _, ans := range answers {
		questionIDs = append(questionIDs, ans.QuestionID)
	}
	questions, err := a.Question.ListByIDs(r.Context(), questionIDs)
	if err != nil {
		a.Logger.Error().Err(err).Str("attempt_id", attemptID).Msg("load questions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load questions")
		return
	}
	questionByID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	correctCount := 0
	details := make([]reviewDetailDTO, 0, len(answers))
	for _, ans := range answers {
		q := questionByID[ans.QuestionID]
		if ans.IsCorrect {
			correctCount++
		}
		details = append(details, reviewDetailDTO{
			QuestionID:     ans.QuestionID,
			Text:           q.Text,
			Options:        q.Options,
			SelectedOption: ans.SelectedOption,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      ans.IsCorrect,
			Explanation:    q.Explanation,
		})
	}

	timeTaken := int64(attempt.CompletedAt.Sub(attempt.AttemptedAt).Seconds())
	if timeTaken < 0 {
		timeTaken = 0
	}

	a.json(w, http.StatusOK, map[string]any{
		"username":           attempt.Username,
		"subject":            subject,
		"score":              attempt.Score,
		"total_questions":    attempt.TotalQuestions,
		"attempted_count":    len(answers),
		"correct_count":      correctCount,
		"incorrect_count":    len(answers) - correctCount,
		"time_taken_seconds": timeTaken,
		"review_details":     details,
	})
}
