package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizforge/internal/domain"
)

func TestUserCheck(t *testing.T) {
	attempts := newFakeAttemptRepo()
	attempts.attempts["attempt-1"] = &domain.Attempt{ID: "attempt-1", Username: "rivai"}
	app := testApp(newFakeQuizRepo(), newFakeQuestionRepo(), attempts)

	for name, tc := range map[string]struct {
		payload string
		code    int
		exists  any
	}{
		"existing user": {`{"username":"rivai"}`, http.StatusOK, true},
		"new user":      {`{"username":"nobody"}`, http.StatusOK, false},
		"blank":         {`{"username":"  "}`, http.StatusBadRequest, nil},
		"bad json":      {`{`, http.StatusBadRequest, nil},
	} {
		rec := httptest.NewRecorder()
		app.UserCheck(rec, httptest.NewRequest(http.MethodPost, "/users/check", strings.NewReader(tc.payload)))
		if rec.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, tc.code)
			continue
		}
		if tc.exists != nil {
			if got := decodeBody(t, rec)["exists"]; got != tc.exists {
				t.Errorf("%s: exists = %v, want %v", name, got, tc.exists)
			}
		}
	}
}
