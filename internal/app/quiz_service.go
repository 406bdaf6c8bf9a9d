package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"qquiz-service/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// QuizService contains the quiz authoring use cases.
type QuizService struct {
	store   QuizStore
	catalog QuizCatalog
	newID   func() string
	now     func() time.Time
}

func NewQuizService(store QuizStore, catalog QuizCatalog) *QuizService {
	return NewQuizServiceWithClock(store, catalog, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(store QuizStore, catalog QuizCatalog, now func() time.Time) *QuizService {
	return &QuizService{
		store:   store,
		catalog: catalog,
		newID:   uuid.NewString,
		now:     now,
	}
}

// CreateQuiz validates draft and stores it as a new quiz owned by actor.
func (s *QuizService) CreateQuiz(ctx context.Context, actor domain.User, draft QuizDraft) (domain.Quiz, error) {
	quiz, err := BuildQuiz(actor.ID, draft, s.newID)
	if err != nil {
		return domain.Quiz{}, err
	}
	now := s.now().UTC()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	log.Printf("quiz %s created by %s with %d questions", quiz.ID, actor.ID, len(quiz.Questions))
	return quiz, nil
}

// GetQuiz returns the quiz as served to quiz takers and graders.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.catalog.GetQuiz(ctx, quizID)
}

// ListQuizzes pages through quizzes, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context, limit, offset int) ([]domain.QuizSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListQuizzes(ctx, limit, offset)
}

// UpdateQuiz replaces the content of a quiz. Only the owner (or an admin) may
// do so. Results already recorded keep their outcome snapshot.
func (s *QuizService) UpdateQuiz(ctx context.Context, actor domain.User, quizID string, draft QuizDraft) (domain.Quiz, error) {
	current, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := AssertOwner(current, actor); err != nil {
		return domain.Quiz{}, err
	}

	quiz, err := BuildQuiz(current.OwnerID, draft, s.newID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.ID = current.ID
	quiz.CreatedAt = current.CreatedAt
	quiz.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, quizID)
	return quiz, nil
}

// DeleteQuiz removes a quiz with its questions, choices and results.
func (s *QuizService) DeleteQuiz(ctx context.Context, actor domain.User, quizID string) error {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if err := AssertOwner(quiz, actor); err != nil {
		return err
	}
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	log.Printf("quiz %s deleted by %s", quizID, actor.ID)
	return nil
}

func (s *QuizService) invalidate(ctx context.Context, quizID string) {
	if err := s.catalog.Invalidate(ctx, quizID); err != nil {
		log.Printf("invalidate cached quiz %s: %v", quizID, err)
	}
}
