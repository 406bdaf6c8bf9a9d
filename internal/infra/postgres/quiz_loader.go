package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qquiz-service/internal/domain"
)

const (
	loadQuizSQL = `SELECT id, owner_id, title, description, created_at, updated_at
FROM quizzes WHERE id = $1`

	loadContentSQL = `SELECT qn.id, qn.text, ch.id, ch.text, ch.is_correct
FROM questions qn
LEFT JOIN choices ch ON ch.question_id = qn.id
WHERE qn.quiz_id = $1
ORDER BY qn.position, ch.position`
)

// QuizLoader reads a quiz with its questions and choices straight off a pgx
// pool. It sits behind the quiz caches on the grading path.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, loadQuizSQL, quizID).Scan(
		&quiz.ID, &quiz.OwnerID, &quiz.Title, &quiz.Description, &quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, loadContentSQL, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz content: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []domain.Question{}
	for rows.Next() {
		var (
			questionID, questionText string
			choiceID, choiceText     *string
			correct                  *bool
		)
		if err := rows.Scan(&questionID, &questionText, &choiceID, &choiceText, &correct); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan quiz content: %w", err)
		}
		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{ID: questionID, Text: questionText, Choices: []domain.Choice{}})
			n++
		}
		if choiceID == nil {
			continue
		}
		choice := domain.Choice{ID: *choiceID}
		if choiceText != nil {
			choice.Text = *choiceText
		}
		if correct != nil {
			choice.Correct = *correct
		}
		quiz.Questions[n-1].Choices = append(quiz.Questions[n-1].Choices, choice)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("read quiz content: %w", err)
	}
	return quiz, nil
}
