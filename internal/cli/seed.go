package cli

import (
	"context"
	"log"

	"qquiz-service/internal/app"
	"qquiz-service/internal/auth"
)

// seedDemo provisions a demo owner, a demo taker and the Geography quiz for
// the in-memory mode, logging a token for each account.
func seedDemo(ctx context.Context, users *app.UserService, quizzes *app.QuizService, tokens *auth.Tokens) error {
	owner, err := users.Register(ctx, "demo", "demo@example.com", "demo", false)
	if err != nil {
		return err
	}
	taker, err := users.Register(ctx, "guest", "guest@example.com", "guest", false)
	if err != nil {
		return err
	}

	quiz, err := quizzes.CreateQuiz(ctx, owner, app.QuizDraft{
		Title:       "Geography",
		Description: "Two warm-up questions",
		Questions: []app.QuestionDraft{
			{Text: "What is the capital of France?", Choices: []app.ChoiceDraft{
				{Text: "Paris", Correct: true},
				{Text: "Lyon"},
				{Text: "Marseille"},
			}},
			{Text: "Which is the largest ocean?", Choices: []app.ChoiceDraft{
				{Text: "Atlantic"},
				{Text: "Pacific", Correct: true},
				{Text: "Indian"},
			}},
		},
	})
	if err != nil {
		return err
	}

	for _, u := range []struct{ role, id string }{{"owner", owner.ID}, {"taker", taker.ID}} {
		token, err := tokens.Issue(u.id)
		if err != nil {
			return err
		}
		log.Printf("demo %s token: %s", u.role, token)
	}
	log.Printf("demo quiz %s seeded", quiz.ID)
	return nil
}
