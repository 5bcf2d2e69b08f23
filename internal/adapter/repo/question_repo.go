package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge/internal/domain"
)

// QuestionRepositoryPG implements domain.QuestionRepository.
type QuestionRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new question repository backed by PostgreSQL.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepositoryPG {
	return &QuestionRepositoryPG{pool: pool}
}

// ListByQuizID returns a quiz's questions in presentation order.
func (r *QuestionRepositoryPG) ListByQuizID(ctx context.Context, quizID string) ([]domain.Question, error) {
	query := `
SELECT id, quiz_id, text, options, correct_option, explanation, position
FROM questions
WHERE quiz_id = $1
ORDER BY position ASC;
`
	rows, err := r.pool.Query(ctx, query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListByIDs fetches the given questions in no particular order.
func (r *QuestionRepositoryPG) ListByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
SELECT id, quiz_id, text, options, correct_option, explanation, position
FROM questions
WHERE id = ANY($1);
`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Options, &q.CorrectOption, &q.Explanation, &q.Position); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

var _ domain.QuestionRepository = (*QuestionRepositoryPG)(nil)
