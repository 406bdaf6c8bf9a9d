package app_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"qquiz-service/internal/app"
	"qquiz-service/internal/domain"
	"qquiz-service/internal/grading"
)

func TestSubmitGradesAndRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)

	// Paris is right, Atlantic is wrong
	result, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Total != 2 || result.UserID != taker.ID || result.QuizID != quiz.ID {
		t.Fatalf("unexpected result: %+v", result)
	}
	if ratio, ok := result.Ratio(); !ok || ratio != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v %v", ratio, ok)
	}
	if len(result.Outcomes) != 2 || !result.Outcomes[0].Correct || result.Outcomes[1].Correct {
		t.Fatalf("unexpected outcomes: %+v", result.Outcomes)
	}

	stored, err := f.submissions.Result(ctx, taker, result.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if stored.Score != 1 || !stored.CreatedAt.Equal(result.CreatedAt) {
		t.Fatalf("stored result differs: %+v", stored)
	}
}

func TestSubmitBlankFieldsScoreZero(t *testing.T) {
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)

	result, err := f.submissions.Submit(context.Background(), taker, quiz.ID, answers(quiz, -1, -1))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 || result.Total != 2 {
		t.Fatalf("expected 0/2, got %d/%d", result.Score, result.Total)
	}
}

func TestRejectedSubmissionStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{RequireAnswer: true})
	quiz := f.geography(t)

	cases := []struct {
		name string
		raw  map[string]string
		want error
	}{
		{"no fields", map[string]string{"submit": "Send"}, domain.ErrEmptySubmission},
		{"all blank with require answer", answers(quiz, -1, -1), domain.ErrEmptySubmission},
		{"foreign choice", map[string]string{grading.FieldName(quiz.Questions[0].ID): quiz.Questions[1].Choices[0].ID}, domain.ErrInvalidChoiceReference},
		{"unknown question", map[string]string{grading.FieldName("nope"): quiz.Questions[0].Choices[0].ID}, domain.ErrInvalidChoiceReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.submissions.Submit(ctx, taker, quiz.ID, tc.raw); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	history, err := f.submissions.MyResults(ctx, taker)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected no results, got %v %+v", err, history)
	}
}

func TestRetakesAppend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)

	first, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 1, 0))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 1))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	third, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 0))
	if err != nil {
		t.Fatalf("third submit: %v", err)
	}

	history, err := f.submissions.MyResults(ctx, taker)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 || history[0].ID != third.ID || history[2].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", history)
	}
	if first.Score != 0 {
		t.Fatalf("earlier attempt must keep its score, got %d", first.Score)
	}

	scores, err := f.submissions.MyScores(ctx, taker)
	if err != nil || len(scores) != 1 {
		t.Fatalf("scores: %v %+v", err, scores)
	}
	s := scores[0]
	if s.Attempts != 3 || s.BestScore != 2 || !s.BestAt.Equal(second.CreatedAt) || s.LatestScore != 1 || !s.LatestAt.Equal(third.CreatedAt) {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

type failingLedger struct {
	app.ResultLedger
	err error
}

func (l failingLedger) Record(context.Context, string, domain.ScoreReport) (domain.Result, error) {
	return domain.Result{}, l.err
}

func TestPersistenceFailureReturnsNoScore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)
	broken := errors.New("connection reset")
	svc := app.NewSubmissionService(f.catalog, failingLedger{ResultLedger: f.store, err: broken}, f.feed, grading.NormalizeOptions{})

	updates, cancel := f.feed.Subscribe(quiz.ID)
	defer cancel()

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	result, err := svc.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 1))
	if !errors.Is(err, domain.ErrPersistence) || !errors.Is(err, broken) {
		t.Fatalf("expected persistence error wrapping cause, got %v", err)
	}
	if n := strings.Count(logs.String(), "connection reset"); n != 1 {
		t.Fatalf("expected the failure logged once with its context, got %d lines:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "quiz "+quiz.ID+" for user "+taker.ID) {
		t.Fatalf("log line lacks quiz and user: %s", logs.String())
	}
	if result.ID != "" || result.Score != 0 {
		t.Fatalf("no result expected on failure, got %+v", result)
	}
	select {
	case r := <-updates:
		t.Fatalf("failed record must not be published: %+v", r)
	default:
	}
}

func TestCorruptQuizIsDataIntegrity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	corrupt := domain.Quiz{
		ID:      "corrupt",
		OwnerID: owner.ID,
		Title:   "Broken",
		Questions: []domain.Question{{ID: "q1", Text: "?", Choices: []domain.Choice{
			{ID: "a", Text: "a", Correct: true},
			{ID: "b", Text: "b", Correct: true},
		}}},
	}
	if err := f.store.CreateQuiz(ctx, corrupt); err != nil {
		t.Fatalf("seed corrupt quiz: %v", err)
	}
	if _, err := f.submissions.Submit(ctx, taker, "corrupt", map[string]string{"question_q1": "a"}); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
	if results, _ := f.store.ListForQuiz(ctx, "corrupt"); len(results) != 0 {
		t.Fatalf("nothing should be recorded, got %+v", results)
	}
}

func TestResultVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)
	result, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 1))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	for _, actor := range []domain.User{taker, owner, admin} {
		if _, err := f.submissions.Result(ctx, actor, result.ID); err != nil {
			t.Fatalf("%s should see the result: %v", actor.ID, err)
		}
	}
	if _, err := f.submissions.Result(ctx, other, result.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.submissions.Result(ctx, taker, "missing"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := f.submissions.QuizResults(ctx, taker, quiz.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("quiz results are owner only: %v", err)
	}
	all, err := f.submissions.QuizResults(ctx, owner, quiz.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("owner results: %v %+v", err, all)
	}
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)

	submit := func(u domain.User, picks ...int) {
		t.Helper()
		if _, err := f.submissions.Submit(ctx, u, quiz.ID, answers(quiz, picks...)); err != nil {
			t.Fatalf("submit %s: %v", u.ID, err)
		}
	}
	submit(taker, 0, 0) // 1/2
	submit(other, 0, 1) // 2/2
	submit(taker, 0, 1) // 2/2, later than other
	submit(admin, 1, 0) // 0/2

	board, err := f.submissions.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var order []string
	for _, s := range board {
		order = append(order, s.UserID)
	}
	want := []string{other.ID, taker.ID, admin.ID}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if board[1].Attempts != 2 {
		t.Fatalf("expected two attempts for taker, got %d", board[1].Attempts)
	}

	if _, err := f.submissions.Leaderboard(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWatchStreamsNewResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)
	if _, err := f.submissions.Submit(ctx, taker, quiz.ID, answers(quiz, 0, 0)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, _, _, err := f.submissions.Watch(ctx, taker, quiz.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	snapshot, updates, cancel, err := f.submissions.Watch(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()
	if len(snapshot) != 1 {
		t.Fatalf("expected one result in snapshot, got %d", len(snapshot))
	}

	next, err := f.submissions.Submit(ctx, other, quiz.ID, answers(quiz, 0, 1))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case got := <-updates:
		if got.ID != next.ID || got.Score != 2 {
			t.Fatalf("unexpected update: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("no update received")
	}
}

func TestWatchWithoutFeed(t *testing.T) {
	f := newFixture(t, grading.NormalizeOptions{})
	quiz := f.geography(t)
	svc := app.NewSubmissionService(f.catalog, f.store, nil, grading.NormalizeOptions{})

	if _, _, _, err := svc.Watch(context.Background(), owner, quiz.ID); err == nil {
		t.Fatalf("expected an error without a feed")
	}
	if _, err := svc.Submit(context.Background(), taker, quiz.ID, answers(quiz, 0, 1)); err != nil {
		t.Fatalf("submit without feed: %v", err)
	}
}
