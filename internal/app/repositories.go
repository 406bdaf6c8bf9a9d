package app

import (
	"context"

	"qquiz-service/internal/domain"
)

// QuizCatalog serves quiz content for taking and grading (usually a cache in
// front of the store). Invalidate drops any cached copy of a quiz.
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string) error
}

// QuizStore persists the quiz graph. Every method is a single transaction.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	// DeleteQuiz removes the quiz with its questions, choices and results.
	DeleteQuiz(ctx context.Context, quizID string) error
	ListQuizzes(ctx context.Context, limit, offset int) ([]domain.QuizSummary, error)
}

// ResultLedger is the append-only store of graded submissions.
type ResultLedger interface {
	// Record atomically stores one new result. Failures wrap domain.ErrPersistence.
	Record(ctx context.Context, userID string, report domain.ScoreReport) (domain.Result, error)
	Get(ctx context.Context, resultID string) (domain.Result, error)
	// ListForUser and ListForQuiz return results newest first.
	ListForUser(ctx context.Context, userID string) ([]domain.Result, error)
	ListForQuiz(ctx context.Context, quizID string) ([]domain.Result, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (domain.User, error)
}
