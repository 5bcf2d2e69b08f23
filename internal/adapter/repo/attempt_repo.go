package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge/internal/domain"
)

// AttemptRepositoryPG implements domain.AttemptRepository.
type AttemptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new attempt repository backed by PostgreSQL.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepositoryPG {
	return &AttemptRepositoryPG{pool: pool}
}

// CreateWithAnswers writes the attempt and its answer rows in one transaction
// and fills in the generated attempt identifier.
func (r *AttemptRepositoryPG) CreateWithAnswers(ctx context.Context, attempt *domain.Attempt, answers []domain.Answer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
INSERT INTO attempts (quiz_id, username, score, total_questions, attempted_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;
`, attempt.QuizID, attempt.Username, attempt.Score, attempt.TotalQuestions, attempt.AttemptedAt, attempt.CompletedAt)
	if err := row.Scan(&attempt.ID); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	rows := make([][]any, 0, len(answers))
	for _, ans := range answers {
		rows = append(rows, []any{attempt.ID, ans.QuestionID, ans.SelectedOption, ans.IsCorrect})
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"answers"},
		[]string{"attempt_id", "question_id", "selected_option", "is_correct"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID fetches an attempt by identifier.
func (r *AttemptRepositoryPG) GetByID(ctx context.Context, attemptID string) (*domain.Attempt, error) {
	query := `
SELECT id, quiz_id, username, score, total_questions, attempted_at, completed_at
FROM attempts
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, attemptID)
	var a domain.Attempt
	if err := row.Scan(&a.ID, &a.QuizID, &a.Username, &a.Score, &a.TotalQuestions, &a.AttemptedAt, &a.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAnswers returns the answer rows recorded for an attempt, ordered by the
// question position within the quiz.
func (r *AttemptRepositoryPG) ListAnswers(ctx context.Context, attemptID string) ([]domain.Answer, error) {
	query := `
SELECT ans.id, ans.attempt_id, ans.question_id, ans.selected_option, ans.is_correct
FROM answers ans
JOIN questions q ON q.id = ans.question_id
WHERE ans.attempt_id = $1
ORDER BY q.position ASC;
`
	rows, err := r.pool.Query(ctx, query, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []domain.Answer
	for rows.Next() {
		var ans domain.Answer
		if err := rows.Scan(&ans.ID, &ans.AttemptID, &ans.QuestionID, &ans.SelectedOption, &ans.IsCorrect); err != nil {
			return nil, err
		}
		answers = append(answers, ans)
	}
	return answers, rows.Err()
}

// ListByUsername returns the user's attempts with quiz subjects, newest first.
func (r *AttemptRepositoryPG) ListByUsername(ctx context.Context, username string) ([]domain.AttemptView, error) {
	query := `
SELECT a.id, a.quiz_id, a.username, a.score, a.total_questions, a.attempted_at, a.completed_at, q.subject
FROM attempts a
JOIN quizzes q ON q.id = a.quiz_id
WHERE a.username = $1
ORDER BY a.attempted_at DESC;
`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var views []domain.AttemptView
	for rows.Next() {
		var v domain.AttemptView
		if err := rows.Scan(&v.ID, &v.QuizID, &v.Username, &v.Score, &v.TotalQuestions, &v.AttemptedAt, &v.CompletedAt, &v.Subject); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// HasAttempts reports whether any attempt exists for the username.
func (r *AttemptRepositoryPG) HasAttempts(ctx context.Context, username string) (bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attempts WHERE username = $1);`, username)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

var _ domain.AttemptRepository = (*AttemptRepositoryPG)(nil)
