package quizclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SessionState is the lifecycle of one quiz-taking session.
type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateGenerating SessionState = "generating"
	StateReady      SessionState = "ready"
	StateSubmitting SessionState = "submitting"
	StateSubmitted  SessionState = "submitted"
	StateError      SessionState = "error"
)

var (
	// ErrAlreadySubmitted is returned when Submit is called after a
	// submission has already been started, by hand or by timer expiry.
	ErrAlreadySubmitted = errors.New("quizclient: session already submitted")
	// ErrNotReady is returned for answer or submit calls before the quiz
	// arrived.
	ErrNotReady = errors.New("quizclient: session is not ready")
)

const defaultSessionDuration = 300 * time.Second

// SessionOptions configures a Session. Zero values get defaults.
type SessionOptions struct {
	// Duration is the countdown granted once the quiz is ready. Expiry
	// auto-submits whatever answers were recorded. Default 300s.
	Duration time.Duration
	// PollInterval and MaxWait bound the status polling loop.
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Session drives one timed quiz run: wait for generation, record answers while
// the countdown runs, and submit exactly once. All methods are safe for
// concurrent use; the countdown timer races Submit through a one-shot guard so
// only one submission ever reaches the server.
type Session struct {
	client   *Client
	quizID   string
	username string
	opts     SessionOptions

	mu        sync.Mutex
	state     SessionState
	quiz      *Quiz
	answers   map[string]string
	startedAt time.Time
	deadline  time.Time
	timer     *time.Timer
	submitted bool
	result    *SubmitResult
	err       error
}

// NewSession builds a session for a quiz that was already created with
// Client.CreateQuiz.
func NewSession(client *Client, quizID, username string, opts SessionOptions) *Session {
	if opts.Duration <= 0 {
		opts.Duration = defaultSessionDuration
	}
	return &Session{
		client:   client,
		quizID:   quizID,
		username: username,
		opts:     opts,
		state:    StateLoading,
		answers:  make(map[string]string),
	}
}

// Start polls until the quiz is ready, then starts the countdown. It blocks
// for the duration of the wait; any failure moves the session to StateError
// and is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return errors.New("quizclient: session already started")
	}
	s.state = StateGenerating
	s.mu.Unlock()

	quiz, err := s.client.WaitForQuiz(ctx, s.quizID, s.opts.PollInterval, s.opts.MaxWait)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiz = quiz
	s.startedAt = time.Now()
	s.deadline = s.startedAt.Add(s.opts.Duration)
	s.state = StateReady
	s.timer = time.AfterFunc(s.opts.Duration, s.expire)
	return nil
}

// State reports the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure that moved the session to StateError, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Questions returns the quiz questions once the session is ready.
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return nil
	}
	return s.quiz.Questions
}

// Remaining reports how much countdown is left. Zero before ready and after
// expiry.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline.IsZero() {
		return 0
	}
	left := time.Until(s.deadline)
	if left < 0 {
		return 0
	}
	return left
}

// SelectAnswer records or overwrites the selected option for a question.
// Selections made outside the answering window are rejected.
func (s *Session) SelectAnswer(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.answers[questionID] = option
	return nil
}

// Submit sends the recorded answers for scoring. The first caller wins; the
// countdown's auto-submit and a user-triggered Submit cannot both go through.
func (s *Session) Submit(ctx context.Context) (*SubmitResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateReady:
	case StateSubmitting, StateSubmitted:
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	default:
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	if s.submitted {
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	s.submitted = true
	s.state = StateSubmitting
	if s.timer != nil {
		s.timer.Stop()
	}
	answers := make([]Answer, 0, len(s.answers))
	for id, option := range s.answers {
		answers = append(answers, Answer{QuestionID: id, SelectedOption: option})
	}
	startedAt := s.startedAt
	s.mu.Unlock()

	result, err := s.client.Submit(ctx, s.quizID, s.username, answers, startedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.err = err
		return nil, err
	}
	s.state = StateSubmitted
	s.result = result
	return result, nil
}

// Result returns the scoring outcome once submitted.
func (s *Session) Result() *SubmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// expire is the countdown callback: force a submission with whatever answers
// were recorded. Losing the race against a manual Submit is fine.
func (s *Session) expire() {
	_, err := s.Submit(context.Background())
	if err != nil && !errors.Is(err, ErrAlreadySubmitted) && !errors.Is(err, ErrNotReady) {
		s.fail(err)
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateError
	s.err = err
}
