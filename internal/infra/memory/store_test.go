package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"qquiz-service/internal/domain"
)

func report(correct, total int) domain.ScoreReport {
	return domain.ScoreReport{
		QuizID:  "quiz-1",
		Correct: correct,
		Total:   total,
		Outcomes: []domain.QuestionOutcome{
			{QuestionID: "q1", ChoiceID: "o2", Answered: true, Correct: correct > 0},
		},
	}
}

func TestRecordIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	first, err := store.Record(ctx, "taker", report(0, 1))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := store.Record(ctx, "taker", report(1, 1)); err != nil {
			t.Fatalf("record retake: %v", err)
		}
		results, err := store.ListForQuiz(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(results) != i+1 {
			t.Fatalf("expected %d results, got %d", i+1, len(results))
		}
	}

	again, err := store.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Score != 0 || again.Total != 1 {
		t.Fatalf("first result was altered: %+v", again)
	}
}

func TestRecordRejectsMissingReferences(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	if _, err := store.Record(ctx, "ghost", report(1, 1)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error for unknown user, got %v", err)
	}
	orphan := report(1, 1)
	orphan.QuizID = "gone"
	if _, err := store.Record(ctx, "taker", orphan); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error for unknown quiz, got %v", err)
	}

	results, _ := store.ListForUser(ctx, "taker")
	if len(results) != 0 {
		t.Fatalf("failed records must not be visible, got %d", len(results))
	}
}

func TestListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := NewStoreWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	_ = store.CreateUser(ctx, domain.User{ID: "owner", Username: "owner", Email: "owner@example.com"})
	_ = store.CreateUser(ctx, domain.User{ID: "taker", Username: "taker", Email: "taker@example.com"})
	if err := store.CreateQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	older, _ := store.Record(ctx, "taker", report(0, 1))
	newer, _ := store.Record(ctx, "taker", report(1, 1))

	results, err := store.ListForUser(ctx, "taker")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 || results[0].ID != newer.ID || results[1].ID != older.ID {
		t.Fatalf("expected newest first, got %+v", results)
	}
	if !results[0].CreatedAt.After(results[1].CreatedAt) {
		t.Fatalf("expected increasing timestamps")
	}
}

func TestDeleteQuizCascades(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	kept := sampleQuiz()
	kept.ID = "quiz-2"
	if err := store.CreateQuiz(ctx, kept); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if _, err := store.Record(ctx, "taker", report(1, 1)); err != nil {
		t.Fatalf("record: %v", err)
	}
	other := report(1, 1)
	other.QuizID = "quiz-2"
	if _, err := store.Record(ctx, "taker", other); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be gone, got %v", err)
	}
	if results, _ := store.ListForQuiz(ctx, "quiz-1"); len(results) != 0 {
		t.Fatalf("expected results of deleted quiz removed, got %d", len(results))
	}
	if results, _ := store.ListForUser(ctx, "taker"); len(results) != 1 || results[0].QuizID != "quiz-2" {
		t.Fatalf("expected other quiz results kept, got %+v", results)
	}
	if err := store.DeleteQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	err := store.CreateUser(ctx, domain.User{ID: "x", Username: "owner", Email: "new@example.com"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate username rejected, got %v", err)
	}
	err = store.CreateUser(ctx, domain.User{ID: "y", Username: "fresh", Email: "OWNER@example.com"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate email rejected, got %v", err)
	}
	if _, err := store.FindUserByUsername(ctx, "taker"); err != nil {
		t.Fatalf("find user: %v", err)
	}
}

func TestListQuizzesPaging(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	second := sampleQuiz()
	second.ID = "quiz-2"
	second.CreatedAt = time.Now().Add(time.Hour)
	if err := store.CreateQuiz(ctx, second); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	page, err := store.ListQuizzes(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].ID != "quiz-2" || page[0].QuestionCount != 1 {
		t.Fatalf("unexpected first page %+v", page)
	}
	rest, _ := store.ListQuizzes(ctx, 10, 1)
	if len(rest) != 1 || rest[0].ID != "quiz-1" {
		t.Fatalf("unexpected second page %+v", rest)
	}
	empty, _ := store.ListQuizzes(ctx, 10, 5)
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}
