package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"quizforge/internal/domain"
)

const (
	quizID1 = "11111111-1111-4111-8111-111111111111"
	quizID2 = "22222222-2222-4222-8222-222222222222"
	quizID3 = "33333333-3333-4333-8333-333333333333"
)

func newQuizRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/quiz", app.QuizCreate)
	r.Get("/quiz/{quizID}/status", app.QuizStatus)
	r.Post("/quiz/{quizID}/submit", app.QuizSubmit)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestQuizCreate(t *testing.T) {
	quizzes := newFakeQuizRepo()
	app := testApp(quizzes, newFakeQuestionRepo(), newFakeAttemptRepo())
	router := newQuizRouter(app)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quiz",
		strings.NewReader(`{"topic":"  Go Concurrency ","username":"rivai"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	quizID, _ := body["quiz_id"].(string)
	if quizID == "" {
		t.Fatalf("empty quiz_id in %v", body)
	}
	quiz := quizzes.quizzes[quizID]
	if quiz == nil {
		t.Fatal("quiz was not persisted")
	}
	if quiz.Subject != "Go Concurrency" {
		t.Errorf("subject = %q, want trimmed topic", quiz.Subject)
	}
	if quiz.Status != domain.QuizStatusGenerating {
		t.Errorf("status = %s, want generating", quiz.Status)
	}
}

func TestQuizCreateValidation(t *testing.T) {
	app := testApp(newFakeQuizRepo(), newFakeQuestionRepo(), newFakeAttemptRepo())
	router := newQuizRouter(app)

	for _, payload := range []string{
		`{"topic":"","username":"rivai"}`,
		`{"topic":"Go","username":"  "}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/quiz", strings.NewReader(payload))
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want 400", payload, rec.Code)
		}
	}
}

func TestQuizStatusLifecycle(t *testing.T) {
	quizzes := newFakeQuizRepo()
	questions := newFakeQuestionRepo()
	app := testApp(quizzes, questions, newFakeAttemptRepo())
	router := newQuizRouter(app)

	quizzes.quizzes[quizID1] = &domain.Quiz{ID: quizID1, Subject: "Go", Status: domain.QuizStatusGenerating}
	quizzes.quizzes[quizID2] = &domain.Quiz{ID: quizID2, Subject: "Go", Status: domain.QuizStatusFailed}
	quizzes.quizzes[quizID3] = &domain.Quiz{ID: quizID3, Subject: "Go", Status: domain.QuizStatusReady}
	questions.byQuiz[quizID3] = []domain.Question{
		{ID: "qq-1", QuizID: quizID3, Text: "Pick A", Options: []string{"A", "B"}, CorrectOption: "A", Explanation: "secret"},
	}

	t.Run("generating", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/"+quizID1+"/status", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		if got := decodeBody(t, rec)["status"]; got != "generating" {
			t.Errorf("body status = %v", got)
		}
	})

	t.Run("failed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/"+quizID2+"/status", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if got := decodeBody(t, rec)["status"]; got != "failed" {
			t.Errorf("body status = %v", got)
		}
	})

	t.Run("ready withholds solutions", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/"+quizID3+"/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		raw := rec.Body.String()
		if strings.Contains(raw, "correct") || strings.Contains(raw, "secret") {
			t.Errorf("response leaks solution: %s", raw)
		}
		body := decodeBody(t, rec)
		qs, _ := body["questions"].([]any)
		if len(qs) != 1 {
			t.Fatalf("questions = %v", body["questions"])
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/99999999-9999-4999-8999-999999999999/status", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestQuizSubmitScoresAndRecords(t *testing.T) {
	quizzes := newFakeQuizRepo()
	questions := newFakeQuestionRepo()
	attempts := newFakeAttemptRepo()
	app := testApp(quizzes, questions, attempts)
	router := newQuizRouter(app)

	quizzes.quizzes[quizID1] = &domain.Quiz{ID: quizID1, Subject: "Go", Status: domain.QuizStatusReady}
	questions.byQuiz[quizID1] = []domain.Question{
		{ID: "qq-1", Options: []string{"A", "B"}, CorrectOption: "A"},
		{ID: "qq-2", Options: []string{"A", "B"}, CorrectOption: "B"},
		{ID: "qq-3", Options: []string{"A", "B"}, CorrectOption: "A"},
	}

	started := time.Now().UTC().Add(-90 * time.Second).Format(time.RFC3339)
	payload := `{"username":"rivai","started_at":"` + started + `","answers":[` +
		`{"question_id":"qq-1","selected_option":"A"},` +
		`{"question_id":"qq-2","selected_option":"A"}]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quiz/"+quizID1+"/submit", strings.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got := body["score"].(float64); got != 1 {
		t.Errorf("score = %v, want 1", got)
	}
	if got := body["total"].(float64); got != 3 {
		t.Errorf("total = %v, want 3", got)
	}
	attemptID, _ := body["attempt_id"].(string)
	attempt := attempts.attempts[attemptID]
	if attempt == nil {
		t.Fatal("attempt was not persisted")
	}
	if attempt.Score != 1 || attempt.TotalQuestions != 3 {
		t.Errorf("attempt = %+v", attempt)
	}
	if attempt.CompletedAt.Sub(attempt.AttemptedAt) < 80*time.Second {
		t.Errorf("attempt duration = %v, want client-reported start honored", attempt.CompletedAt.Sub(attempt.AttemptedAt))
	}
	answers := attempts.answers[attemptID]
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2 (unanswered questions produce no rows)", len(answers))
	}
	if !answers[0].IsCorrect || answers[1].IsCorrect {
		t.Errorf("answer correctness = %v / %v", answers[0].IsCorrect, answers[1].IsCorrect)
	}
}

func TestQuizSubmitFutureStartClamped(t *testing.T) {
	quizzes := newFakeQuizRepo()
	questions := newFakeQuestionRepo()
	attempts := newFakeAttemptRepo()
	app := testApp(quizzes, questions, attempts)
	router := newQuizRouter(app)

	quizzes.quizzes[quizID1] = &domain.Quiz{ID: quizID1, Status: domain.QuizStatusReady}
	questions.byQuiz[quizID1] = []domain.Question{{ID: "qq-1", CorrectOption: "A"}}

	future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	payload := `{"username":"rivai","started_at":"` + future + `","answers":[]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quiz/"+quizID1+"/submit", strings.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	attempt := attempts.attempts[body["attempt_id"].(string)]
	if attempt.AttemptedAt.After(attempt.CompletedAt) {
		t.Errorf("future start not clamped: %v > %v", attempt.AttemptedAt, attempt.CompletedAt)
	}
}

func TestQuizSubmitValidation(t *testing.T) {
	quizzes := newFakeQuizRepo()
	quizzes.quizzes[quizID1] = &domain.Quiz{ID: quizID1, Status: domain.QuizStatusReady}
	app := testApp(quizzes, newFakeQuestionRepo(), newFakeAttemptRepo())
	router := newQuizRouter(app)

	for name, tc := range map[string]struct {
		path    string
		payload string
		want    int
	}{
		"missing username": {"/quiz/" + quizID1 + "/submit", `{"answers":[]}`, http.StatusBadRequest},
		"missing answers":  {"/quiz/" + quizID1 + "/submit", `{"username":"rivai"}`, http.StatusBadRequest},
		"unknown quiz":     {"/quiz/ghost/submit", `{"username":"rivai","answers":[]}`, http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.payload)))
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, tc.want)
		}
	}
}

func TestQuizSubmitPersistError(t *testing.T) {
	quizzes := newFakeQuizRepo()
	questions := newFakeQuestionRepo()
	attempts := newFakeAttemptRepo()
	attempts.createEr = errors.New("db down")
	app := testApp(quizzes, questions, attempts)
	router := newQuizRouter(app)

	quizzes.quizzes[quizID1] = &domain.Quiz{ID: quizID1, Status: domain.QuizStatusReady}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quiz/"+quizID1+"/submit",
		strings.NewReader(`{"username":"rivai","answers":[]}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
