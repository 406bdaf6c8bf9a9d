package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"qquiz-service/internal/domain"
	"qquiz-service/internal/grading"
)

// SubmissionService grades quiz submissions and serves result history.
type SubmissionService struct {
	catalog QuizCatalog
	ledger  ResultLedger
	feed    *ResultFeed
	opts    grading.NormalizeOptions
}

// NewSubmissionService wires the grading path. feed may be nil.
func NewSubmissionService(catalog QuizCatalog, ledger ResultLedger, feed *ResultFeed, opts grading.NormalizeOptions) *SubmissionService {
	return &SubmissionService{catalog: catalog, ledger: ledger, feed: feed, opts: opts}
}

// Submit normalizes raw answers, grades them and records the outcome. An
// error means nothing was stored.
func (s *SubmissionService) Submit(ctx context.Context, actor domain.User, quizID string, raw map[string]string) (domain.Result, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}

	report, err := grading.GradeSubmission(quiz, raw, s.opts)
	if err != nil {
		if errors.Is(err, domain.ErrDataIntegrity) {
			log.Printf("grading quiz %s for user %s: %v", quizID, actor.ID, err)
		}
		return domain.Result{}, err
	}

	result, err := s.ledger.Record(ctx, actor.ID, report)
	if err != nil {
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		log.Printf("record result of quiz %s for user %s: %v", quizID, actor.ID, err)
		return domain.Result{}, err
	}

	s.feed.Publish(result)
	return result, nil
}

// Result returns one result to its submitter, the quiz owner or an admin.
func (s *SubmissionService) Result(ctx context.Context, actor domain.User, resultID string) (domain.Result, error) {
	result, err := s.ledger.Get(ctx, resultID)
	if err != nil {
		return domain.Result{}, err
	}
	if actor.Admin || (actor.ID != "" && result.UserID == actor.ID) {
		return result, nil
	}
	quiz, err := s.catalog.GetQuiz(ctx, result.QuizID)
	if err != nil {
		return domain.Result{}, err
	}
	if err := AssertOwner(quiz, actor); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

// MyResults returns the actor's result history, newest first.
func (s *SubmissionService) MyResults(ctx context.Context, actor domain.User) ([]domain.Result, error) {
	return s.ledger.ListForUser(ctx, actor.ID)
}

// MyScores returns one summary per quiz the actor has taken, most recent first.
func (s *SubmissionService) MyScores(ctx context.Context, actor domain.User) ([]domain.ScoreSummary, error) {
	results, err := s.ledger.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	summaries := Summarize(results)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LatestAt.After(summaries[j].LatestAt)
	})
	return summaries, nil
}

// QuizResults lists every result of a quiz for its owner.
func (s *SubmissionService) QuizResults(ctx context.Context, actor domain.User, quizID string) ([]domain.Result, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(quiz, actor); err != nil {
		return nil, err
	}
	return s.ledger.ListForQuiz(ctx, quizID)
}

// Leaderboard ranks each user's best result for a quiz.
func (s *SubmissionService) Leaderboard(ctx context.Context, quizID string) ([]domain.ScoreSummary, error) {
	if _, err := s.catalog.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	results, err := s.ledger.ListForQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	summaries := Summarize(results)
	RankLeaderboard(summaries)
	return summaries, nil
}

// Watch subscribes the quiz owner to newly recorded results. The snapshot is
// read after subscribing, so a result may appear in both.
// The caller must invoke cancel to avoid leaks.
func (s *SubmissionService) Watch(ctx context.Context, actor domain.User, quizID string) ([]domain.Result, <-chan domain.Result, func(), error) {
	if s.feed == nil {
		return nil, nil, nil, errors.New("live results are disabled")
	}
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := AssertOwner(quiz, actor); err != nil {
		return nil, nil, nil, err
	}

	updates, cancel := s.feed.Subscribe(quizID)
	snapshot, err := s.ledger.ListForQuiz(ctx, quizID)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return snapshot, updates, cancel, nil
}
