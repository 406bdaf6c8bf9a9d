package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"qquiz-service/internal/domain"
)

func TestQuizRowsKeepsOrder(t *testing.T) {
	created := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	quiz := domain.Quiz{
		ID:        "quiz-1",
		OwnerID:   "owner",
		Title:     "Geography",
		CreatedAt: created,
		UpdatedAt: created,
		Questions: []domain.Question{
			{ID: "q1", Text: "Capital of France?", Choices: []domain.Choice{
				{ID: "c1", Text: "Paris", Correct: true},
				{ID: "c2", Text: "Lyon"},
			}},
			{ID: "q2", Text: "Largest ocean?", Choices: []domain.Choice{
				{ID: "c3", Text: "Atlantic"},
				{ID: "c4", Text: "Pacific", Correct: true},
			}},
		},
	}

	qz, questions, choices := quizRows(quiz)
	require.Equal(t, "owner", qz.OwnerID)
	require.Equal(t, created, qz.CreatedAt)
	require.Len(t, questions, 2)
	require.Equal(t, 1, questions[1].Position)
	require.Equal(t, "quiz-1", questions[1].QuizID)
	require.Len(t, choices, 4)
	require.Equal(t, "q2", choices[3].QuestionID)
	require.Equal(t, 1, choices[3].Position)
	require.True(t, choices[3].Correct)
	require.False(t, choices[2].Correct)
}

func TestResultFromRows(t *testing.T) {
	row := resultRow{ID: "r1", UserID: "u1", QuizID: "quiz-1", Score: 1, Total: 2}
	answers := []resultAnswerRow{
		{ResultID: "r1", Position: 0, QuestionID: "q1", ChoiceID: "c1", Answered: true, Correct: true},
		{ResultID: "r1", Position: 1, QuestionID: "q2"},
	}

	result := resultFromRows(row, answers)
	require.Equal(t, 1, result.Score)
	require.Equal(t, 2, result.Total)
	require.Equal(t, []domain.QuestionOutcome{
		{QuestionID: "q1", ChoiceID: "c1", Answered: true, Correct: true},
		{QuestionID: "q2"},
	}, result.Outcomes)

	empty := resultFromRows(resultRow{ID: "r2"}, nil)
	require.NotNil(t, empty.Outcomes)
	require.Empty(t, empty.Outcomes)
}
