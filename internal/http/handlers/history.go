package handlers

import (
	"net/http"
	"strings"
	"time"
)

type historyAttemptDTO struct {
	ID    string    `json:"id"`
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}

type subjectStatsDTO struct {
	Count    int                 `json:"count"`
	Attempts []historyAttemptDTO `json:"attempts"`
}

// History aggregates a user's attempts into profile stats plus per-subject
// attempt lists. All reduction happens here, over one repository query.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "username is required")
		return
	}

	attempts, err := a.Attempts.ListByUsername(r.Context(), username)
	if err != nil {
		a.Logger.Error().Err(err).Str("username", username).Msg("load history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if len(attempts) == 0 {
		a.json(w, http.StatusOK, map[string]any{"empty": true})
		return
	}

	// attempts are newest first, so the oldest one closes the list
	memberSince := attempts[len(attempts)-1].AttemptedAt

	totalScore := 0
	totalMax := 0
	totalTimeSeconds := 0.0
	validTimeCount := 0
	highestScore := -1
	highestScoreSubject := "N/A"
	subjects := map[string]*subjectStatsDTO{}
	// first-seen order, so ties resolve the same way on every request
	subjectOrder := []string{}

	for _, att := range attempts {
		totalScore += att.Score
		totalMax += att.TotalQuestions

		if duration := att.CompletedAt.Sub(att.AttemptedAt).Seconds(); duration > 0 {
			totalTimeSeconds += duration
			validTimeCount++
		}

		if att.Score > highestScore {
			highestScore = att.Score
			highestScoreSubject = att.Subject
		}

		stats, ok := subjects[att.Subject]
		if !ok {
			stats = &subjectStatsDTO{}
			subjects[att.Subject] = stats
			subjectOrder = append(subjectOrder, att.Subject)
		}
		stats.Count++
		stats.Attempts = append(stats.Attempts, historyAttemptDTO{
			ID:    att.ID,
			Score: att.Score,
			Total: att.TotalQuestions,
			Date:  att.AttemptedAt,
		})
	}

	avgAccuracy := 0
	if totalMax > 0 {
		avgAccuracy = int(float64(totalScore)/float64(totalMax)*100 + 0.5)
	}
	avgTimeSeconds := 0
	if validTimeCount > 0 {
		avgTimeSeconds = int(totalTimeSeconds / float64(validTimeCount))
	}

	favoriteSubject := "N/A"
	maxPlays := -1
	for _, subject := range subjectOrder {
		if subjects[subject].Count > maxPlays {
			maxPlays = subjects[subject].Count
			favoriteSubject = subject
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"member_since":          memberSince,
			"avg_accuracy":          avgAccuracy,
			"avg_time_seconds":      avgTimeSeconds,
			"highest_score":         highestScore,
			"highest_score_subject": highestScoreSubject,
			"favorite_subject":      favoriteSubject,
		},
		"subjects": subjects,
	})
}
