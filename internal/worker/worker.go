// Package worker runs the quiz generation pipeline. The HTTP API only ever
// inserts quizzes in the generating state; workers claim them from the
// database queue, call the configured provider, and are the sole writers of
// terminal status. A worker failure of any kind marks the quiz failed and
// never escapes the claim loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quizforge/internal/domain"
	"quizforge/internal/infra"
	"quizforge/internal/providers/question"
	"quizforge/internal/sanitize"
)

const defaultPollInterval = 2 * time.Second

// Options wires the worker's collaborators.
type Options struct {
	Quizzes   domain.QuizRepository
	Generator question.Generator
	Logger    infra.Logger
	Metrics   *infra.Metrics
	// QuestionCount is the number of questions requested per quiz.
	QuestionCount int
	// GenerateTimeout bounds one provider call.
	GenerateTimeout time.Duration
	// PollInterval is the idle sleep between queue checks.
	PollInterval time.Duration
}

// Worker claims generating quizzes and drives them to a terminal status.
type Worker struct {
	quizzes       domain.QuizRepository
	generator     question.Generator
	logger        infra.Logger
	metrics       *infra.Metrics
	questionCount int
	timeout       time.Duration
	pollInterval  time.Duration
}

func New(opts Options) *Worker {
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	count := opts.QuestionCount
	if count <= 0 {
		count = 10
	}
	timeout := opts.GenerateTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Worker{
		quizzes:       opts.Quizzes,
		generator:     opts.Generator,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		questionCount: count,
		timeout:       timeout,
		pollInterval:  pollInterval,
	}
}

// Run executes n claim loops until the context is cancelled.
func (w *Worker) Run(ctx context.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return w.runLoop(ctx)
		})
	}
	return g.Wait()
}

func (w *Worker) runLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		quiz, err := w.quizzes.ClaimNext(ctx)
		switch {
		case err == nil:
			w.Process(ctx, quiz)
			continue
		case errors.Is(err, domain.ErrNotFound):
			// queue empty, wait for the next tick
		case errors.Is(err, context.Canceled):
			return ctx.Err()
		default:
			w.logger.Error().Err(err).Msg("worker: claim failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Process runs one claimed quiz to its terminal status. Every failure path
// funnels through markFailed so a quiz can never stay generating forever.
func (w *Worker) Process(ctx context.Context, quiz *domain.Quiz) {
	started := time.Now()
	w.logger.Info().
		Str("quiz_id", quiz.ID).
		Str("subject", quiz.Subject).
		Str("provider", w.generator.Name()).
		Msg("worker: generating quiz")

	questions, err := w.generate(ctx, quiz.Subject)
	if err != nil {
		w.logger.Error().Err(err).Str("quiz_id", quiz.ID).Msg("worker: generation failed")
		w.markFailed(ctx, quiz.ID)
		w.observe("failed", started)
		return
	}

	if err := w.quizzes.CompleteWithQuestions(ctx, quiz.ID, questions); err != nil {
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			w.logger.Warn().Str("quiz_id", quiz.ID).Msg("worker: quiz already finalized")
			return
		}
		w.logger.Error().Err(err).Str("quiz_id", quiz.ID).Msg("worker: persist failed")
		w.markFailed(ctx, quiz.ID)
		w.observe("failed", started)
		return
	}

	w.logger.Info().
		Str("quiz_id", quiz.ID).
		Int("questions", len(questions)).
		Dur("elapsed", time.Since(started)).
		Msg("worker: quiz ready")
	w.observe("ready", started)
}

func (w *Worker) generate(ctx context.Context, subject string) ([]domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	raw, err := w.generator.Generate(ctx, subject, w.questionCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrProviderFailure)
	}

	payloads, err := sanitize.Questions(raw)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, errors.New("parsed question list is empty")
	}

	questions := make([]domain.Question, 0, len(payloads))
	for i, p := range payloads {
		q := domain.Question{
			Text:          strings.TrimSpace(p.Text),
			Options:       p.Options,
			CorrectOption: p.CorrectOption,
			Explanation:   p.Explanation,
			Position:      i,
		}
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// validateQuestion enforces what the upstream model is merely asked for: the
// correct option has to be one of the offered options.
func validateQuestion(q domain.Question) error {
	if q.Text == "" {
		return errors.New("empty question text")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("needs at least 2 options, got %d", len(q.Options))
	}
	for _, opt := range q.Options {
		if opt == q.CorrectOption {
			return nil
		}
	}
	return fmt.Errorf("correct option %q not present in options", q.CorrectOption)
}

func (w *Worker) markFailed(ctx context.Context, quizID string) {
	// A cancelled claim context must not block the terminal write.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}
	if err := w.quizzes.MarkFailed(ctx, quizID); err != nil {
		w.logger.Error().Err(err).Str("quiz_id", quizID).Msg("worker: mark failed errored")
	}
}

func (w *Worker) observe(status string, started time.Time) {
	if w.metrics == nil {
		return
	}
	w.metrics.GenerationTotal.WithLabelValues(status).Inc()
	w.metrics.GenerationDuration.Observe(time.Since(started).Seconds())
}
