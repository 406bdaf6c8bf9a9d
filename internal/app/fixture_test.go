package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"qquiz-service/internal/app"
	"qquiz-service/internal/domain"
	"qquiz-service/internal/grading"
	"qquiz-service/internal/infra/memory"
)

var (
	owner = domain.User{ID: "owner", Username: "owner", Email: "owner@example.com"}
	taker = domain.User{ID: "taker", Username: "taker", Email: "taker@example.com"}
	other = domain.User{ID: "other", Username: "other", Email: "other@example.com"}
	admin = domain.User{ID: "admin", Username: "admin", Email: "admin@example.com", Admin: true}
)

type fixture struct {
	store       *memory.Store
	catalog     *memory.QuizRepository
	feed        *app.ResultFeed
	quizzes     *app.QuizService
	submissions *app.SubmissionService
}

// stepClock returns a clock advancing one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T, opts grading.NormalizeOptions) *fixture {
	t.Helper()
	clock := stepClock()
	store := memory.NewStoreWithClock(clock)
	for _, u := range []domain.User{owner, taker, other, admin} {
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("create user %s: %v", u.ID, err)
		}
	}
	catalog := memory.NewQuizRepository(store, time.Minute)
	feed := app.NewResultFeed()
	return &fixture{
		store:       store,
		catalog:     catalog,
		feed:        feed,
		quizzes:     app.NewQuizServiceWithClock(store, catalog, clock),
		submissions: app.NewSubmissionService(catalog, store, feed, opts),
	}
}

func geographyDraft() app.QuizDraft {
	return app.QuizDraft{
		Title: "Geography",
		Questions: []app.QuestionDraft{
			{Text: "Capital of France?", Choices: []app.ChoiceDraft{{Text: "Paris", Correct: true}, {Text: "Lyon"}}},
			{Text: "Largest ocean?", Choices: []app.ChoiceDraft{{Text: "Atlantic"}, {Text: "Pacific", Correct: true}}},
		},
	}
}

func (f *fixture) geography(t *testing.T) domain.Quiz {
	t.Helper()
	quiz, err := f.quizzes.CreateQuiz(context.Background(), owner, geographyDraft())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

// answers builds a form submission choosing the choice at index picks[i] for
// question i; a negative index leaves the field blank.
func answers(quiz domain.Quiz, picks ...int) map[string]string {
	raw := make(map[string]string, len(picks))
	for i, p := range picks {
		q := quiz.Questions[i]
		if p < 0 {
			raw[grading.FieldName(q.ID)] = ""
			continue
		}
		raw[grading.FieldName(q.ID)] = q.Choices[p].ID
	}
	return raw
}
