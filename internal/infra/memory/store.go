package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"qquiz-service/internal/domain"
)

// Store is an in-memory implementation of app.QuizStore, app.ResultLedger and
// app.UserRepository. A single mutex makes every operation atomic.
type Store struct {
	now func() time.Time

	mu      sync.RWMutex
	users   map[string]domain.User
	quizzes map[string]domain.Quiz
	results []domain.Result
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock allows deterministic result timestamps in tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		now:     now,
		users:   make(map[string]domain.User),
		quizzes: make(map[string]domain.Quiz),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == user.ID || u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return domain.ErrUserExists
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[quiz.OwnerID]; !ok {
		return fmt.Errorf("create quiz: owner %s: %w", quiz.OwnerID, domain.ErrUserNotFound)
	}
	if _, ok := s.quizzes[quiz.ID]; ok {
		return fmt.Errorf("create quiz: duplicate id %s", quiz.ID)
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

// DeleteQuiz removes the quiz and every result recorded for it.
func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	kept := s.results[:0]
	for _, r := range s.results {
		if r.QuizID != quizID {
			kept = append(kept, r)
		}
	}
	clear(s.results[len(kept):])
	s.results = kept
	return nil
}

func (s *Store) ListQuizzes(_ context.Context, limit, offset int) ([]domain.QuizSummary, error) {
	s.mu.RLock()
	summaries := make([]domain.QuizSummary, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		summaries = append(summaries, domain.QuizSummary{
			ID:            q.ID,
			OwnerID:       q.OwnerID,
			Title:         q.Title,
			Description:   q.Description,
			QuestionCount: len(q.Questions),
			CreatedAt:     q.CreatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	if offset >= len(summaries) {
		return []domain.QuizSummary{}, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// LoadQuiz satisfies QuizLoader so the store can back a QuizRepository cache.
func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q, ok := s.quizzes[quizID]; ok {
		return cloneQuiz(q), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Record appends one result. A missing user or quiz fails like a foreign-key
// violation would, leaving the ledger untouched.
func (s *Store) Record(_ context.Context, userID string, report domain.ScoreReport) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domain.Result{}, fmt.Errorf("%w: user %s does not exist", domain.ErrPersistence, userID)
	}
	if _, ok := s.quizzes[report.QuizID]; !ok {
		return domain.Result{}, fmt.Errorf("%w: quiz %s does not exist", domain.ErrPersistence, report.QuizID)
	}
	result := domain.Result{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    report.QuizID,
		Score:     report.Correct,
		Total:     report.Total,
		Outcomes:  append([]domain.QuestionOutcome(nil), report.Outcomes...),
		CreatedAt: s.now().UTC(),
	}
	s.results = append(s.results, result)
	return cloneResult(result), nil
}

func (s *Store) Get(_ context.Context, resultID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == resultID {
			return cloneResult(r), nil
		}
	}
	return domain.Result{}, domain.ErrResultNotFound
}

func (s *Store) ListForUser(_ context.Context, userID string) ([]domain.Result, error) {
	return s.listNewestFirst(func(r domain.Result) bool { return r.UserID == userID }), nil
}

func (s *Store) ListForQuiz(_ context.Context, quizID string) ([]domain.Result, error) {
	return s.listNewestFirst(func(r domain.Result) bool { return r.QuizID == quizID }), nil
}

func (s *Store) listNewestFirst(match func(domain.Result) bool) []domain.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0)
	for i := len(s.results) - 1; i >= 0; i-- {
		if match(s.results[i]) {
			out = append(out, cloneResult(s.results[i]))
		}
	}
	return out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	out := q
	out.Questions = make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Choices = append([]domain.Choice(nil), question.Choices...)
		out.Questions[i] = question
	}
	return out
}

func cloneResult(r domain.Result) domain.Result {
	r.Outcomes = append([]domain.QuestionOutcome(nil), r.Outcomes...)
	return r
}
