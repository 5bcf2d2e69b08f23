package domain

import "time"

// QuizStatus enumerates quiz lifecycle states.
type QuizStatus string

const (
	QuizStatusGenerating QuizStatus = "generating"
	QuizStatusReady      QuizStatus = "ready"
	QuizStatusFailed     QuizStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s QuizStatus) Terminal() bool {
	return s == QuizStatusReady || s == QuizStatusFailed
}

// Quiz is one requested question-generation job. It is created in the
// generating state and moved exactly once to ready or failed by the worker.
type Quiz struct {
	ID          string
	Subject     string
	RequestedBy string
	Status      QuizStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question is one generated multiple-choice question. The correct option is
// always a member of Options; the worker rejects generated material that
// violates this before anything is persisted.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Options       []string
	CorrectOption string
	Explanation   string
	Position      int
}

// Attempt is one user's timed, scored pass over a quiz. It is recorded at
// submission time with the client-supplied start timestamp.
type Attempt struct {
	ID             string
	QuizID         string
	Username       string
	Score          int
	TotalQuestions int
	AttemptedAt    time.Time
	CompletedAt    time.Time
}

// Answer records one selected option within an attempt. Unanswered questions
// produce no row.
type Answer struct {
	ID             string
	AttemptID      string
	QuestionID     string
	SelectedOption string
	IsCorrect      bool
}
