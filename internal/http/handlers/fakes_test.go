package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"quizforge/internal/domain"
)

func testApp(quizzes *fakeQuizRepo, questions *fakeQuestionRepo, attempts *fakeAttemptRepo) *App {
	return NewApp(zerolog.New(io.Discard), quizzes, questions, attempts, nil)
}

type fakeQuizRepo struct {
	quizzes  map[string]*domain.Quiz
	createEr error
	nextID   int
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[string]*domain.Quiz{}}
}

func (f *fakeQuizRepo) Create(_ context.Context, quiz *domain.Quiz) error {
	if f.createEr != nil {
		return f.createEr
	}
	f.nextID++
	quiz.ID = fmt.Sprintf("quiz-%d", f.nextID)
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizRepo) GetByID(_ context.Context, quizID string) (*domain.Quiz, error) {
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *quiz
	return &cp, nil
}

func (f *fakeQuizRepo) ClaimNext(context.Context) (*domain.Quiz, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeQuizRepo) CompleteWithQuestions(_ context.Context, quizID string, _ []domain.Question) error {
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return domain.ErrNotFound
	}
	if quiz.Status.Terminal() {
		return domain.ErrAlreadyFinalized
	}
	quiz.Status = domain.QuizStatusReady
	return nil
}

func (f *fakeQuizRepo) MarkFailed(_ context.Context, quizID string) error {
	if quiz, ok := f.quizzes[quizID]; ok && !quiz.Status.Terminal() {
		quiz.Status = domain.QuizStatusFailed
	}
	return nil
}

type fakeQuestionRepo struct {
	byQuiz map[string][]domain.Question
	listEr error
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byQuiz: map[string][]domain.Question{}}
}

func (f *fakeQuestionRepo) ListByQuizID(_ context.Context, quizID string) ([]domain.Question, error) {
	if f.listEr != nil {
		return nil, f.listEr
	}
	return f.byQuiz[quizID], nil
}

func (f *fakeQuestionRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Question, error) {
	if f.listEr != nil {
		return nil, f.listEr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Question
	for _, questions := range f.byQuiz {
		for _, q := range questions {
			if want[q.ID] {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

type fakeAttemptRepo struct {
	attempts map[string]*domain.Attempt
	answers  map[string][]domain.Answer
	views    []domain.AttemptView
	createEr error
	nextID   int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{
		attempts: map[string]*domain.Attempt{},
		answers:  map[string][]domain.Answer{},
	}
}

func (f *fakeAttemptRepo) CreateWithAnswers(_ context.Context, attempt *domain.Attempt, answers []domain.Answer) error {
	if f.createEr != nil {
		return f.createEr
	}
	f.nextID++
	attempt.ID = fmt.Sprintf("attempt-%d", f.nextID)
	f.attempts[attempt.ID] = attempt
	for i := range answers {
		answers[i].AttemptID = attempt.ID
	}
	f.answers[attempt.ID] = answers
	return nil
}

func (f *fakeAttemptRepo) GetByID(_ context.Context, attemptID string) (*domain.Attempt, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *attempt
	return &cp, nil
}

func (f *fakeAttemptRepo) ListAnswers(_ context.Context, attemptID string) ([]domain.Answer, error) {
	return f.answers[attemptID], nil
}

func (f *fakeAttemptRepo) ListByUsername(_ context.Context, username string) ([]domain.AttemptView, error) {
	var out []domain.AttemptView
	for _, v := range f.views {
		if v.Username == username {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) HasAttempts(_ context.Context, username string) (bool, error) {
	for _, v := range f.views {
		if v.Username == username {
			return true, nil
		}
	}
	for _, att := range f.attempts {
		if att.Username == username {
			return true, nil
		}
	}
	return false, nil
}
