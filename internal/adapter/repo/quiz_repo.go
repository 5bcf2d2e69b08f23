package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge/internal/domain"
)

// staleClaimAfter is how long a claimed quiz may sit without a terminal write
// before it is handed to another worker. It must comfortably exceed the
// generation timeout so a slow-but-alive worker is never raced.
const staleClaimAfter = 10 * time.Minute

// QuizRepositoryPG implements domain.QuizRepository.
type QuizRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new quiz repository backed by PostgreSQL.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepositoryPG {
	return &QuizRepositoryPG{pool: pool}
}

// Create inserts a quiz in the generating state and fills in the generated
// identifier and timestamps.
func (r *QuizRepositoryPG) Create(ctx context.Context, quiz *domain.Quiz) error {
	query := `
INSERT INTO quizzes (subject, requested_by, status)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at;
`
	if quiz.Status == "" {
		quiz.Status = domain.QuizStatusGenerating
	}
	row := r.pool.QueryRow(ctx, query, quiz.Subject, quiz.RequestedBy, quiz.Status)
	return row.Scan(&quiz.ID, &quiz.CreatedAt, &quiz.UpdatedAt)
}

// GetByID fetches a quiz by its identifier.
func (r *QuizRepositoryPG) GetByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	query := `
SELECT id, subject, requested_by, status, created_at, updated_at
FROM quizzes
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, quizID)
	var quiz domain.Quiz
	if err := row.Scan(
		&quiz.ID,
		&quiz.Subject,
		&quiz.RequestedBy,
		&quiz.Status,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// ClaimNext marks the oldest claimable generating quiz as claimed and returns
// it. SKIP LOCKED keeps concurrent workers off the same row; claims older than
// staleClaimAfter are treated as abandoned (worker crashed mid-generation) and
// handed out again, so a quiz cannot stay generating across a process death.
func (r *QuizRepositoryPG) ClaimNext(ctx context.Context) (*domain.Quiz, error) {
	query := `
WITH next_quiz AS (
    SELECT id
    FROM quizzes
    WHERE status = 'generating'
      AND (claimed_at IS NULL OR claimed_at < now() - make_interval(secs => $1))
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE quizzes
SET claimed_at = now(), updated_at = now()
WHERE id IN (SELECT id FROM next_quiz)
RETURNING id, subject, requested_by, status, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query, staleClaimAfter.Seconds())
	var quiz domain.Quiz
	if err := row.Scan(
		&quiz.ID,
		&quiz.Subject,
		&quiz.RequestedBy,
		&quiz.Status,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// CompleteWithQuestions stores the generated questions and flips the quiz to
// ready in one transaction. The status guard on the UPDATE makes the terminal
// write exactly-once: losing it rolls the inserts back.
func (r *QuizRepositoryPG) CompleteWithQuestions(ctx context.Context, quizID string, questions []domain.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
UPDATE quizzes
SET status = 'ready', updated_at = now()
WHERE id = $1 AND status = 'generating';
`, quizID)
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyFinalized
	}

	rows := make([][]any, 0, len(questions))
	for i, q := range questions {
		rows = append(rows, []any{quizID, q.Text, q.Options, q.CorrectOption, q.Explanation, i})
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"quiz_id", "text", "options", "correct_option", "explanation", "position"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkFailed flips a generating quiz to failed. A quiz that already reached a
// terminal status is left untouched.
func (r *QuizRepositoryPG) MarkFailed(ctx context.Context, quizID string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE quizzes
SET status = 'failed', updated_at = now()
WHERE id = $1 AND status = 'generating';
`, quizID)
	return err
}

var _ domain.QuizRepository = (*QuizRepositoryPG)(nil)
