package domain

import "context"

// QuizRepository defines persistence for quizzes and their generation
// lifecycle. ClaimNext and the two terminal writes are the worker's half of
// the contract; everything else serves the HTTP API.
type QuizRepository interface {
	Create(ctx context.Context, quiz *Quiz) error
	GetByID(ctx context.Context, quizID string) (*Quiz, error)
	// ClaimNext picks the oldest claimable generating quiz, marks it claimed
	// and returns it. Claims abandoned by a dead worker become claimable
	// again. ErrNotFound signals an empty queue.
	ClaimNext(ctx context.Context) (*Quiz, error)
	// CompleteWithQuestions inserts the generated questions and flips the quiz
	// to ready in a single transaction. ErrAlreadyFinalized is returned, and
	// nothing is written, when the quiz is no longer generating.
	CompleteWithQuestions(ctx context.Context, quizID string, questions []Question) error
	// MarkFailed flips a generating quiz to failed. Succeeds silently when the
	// quiz is already terminal so a late failure can never undo a result.
	MarkFailed(ctx context.Context, quizID string) error
}

// QuestionRepository reads persisted questions.
type QuestionRepository interface {
	ListByQuizID(ctx context.Context, quizID string) ([]Question, error)
	ListByIDs(ctx context.Context, ids []string) ([]Question, error)
}

// AttemptView is an attempt joined with its quiz subject, as needed by the
// history aggregation.
type AttemptView struct {
	Attempt
	Subject string
}

// AttemptRepository persists attempts together with their answers.
type AttemptRepository interface {
	// CreateWithAnswers writes the attempt and its answer rows atomically.
	CreateWithAnswers(ctx context.Context, attempt *Attempt, answers []Answer) error
	GetByID(ctx context.Context, attemptID string) (*Attempt, error)
	// ListAnswers returns the attempt's answers in question order.
	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)
	// ListByUsername returns the user's attempts, newest first.
	ListByUsername(ctx context.Context, username string) ([]AttemptView, error)
	HasAttempts(ctx context.Context, username string) (bool, error)
}
