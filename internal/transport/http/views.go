package http

import (
	"math"
	"time"

	"qquiz-service/internal/domain"
	"qquiz-service/internal/grading"
)

type choiceView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

type questionView struct {
	ID      string       `json:"id"`
	Field   string       `json:"field"`
	Text    string       `json:"text"`
	Choices []choiceView `json:"choices"`
}

type quizView struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"ownerId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []questionView `json:"questions"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// newQuizView renders quiz; correct flags are only included when reveal is set.
func newQuizView(quiz domain.Quiz, reveal bool) quizView {
	view := quizView{
		ID:          quiz.ID,
		OwnerID:     quiz.OwnerID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   make([]questionView, 0, len(quiz.Questions)),
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
	for _, q := range quiz.Questions {
		qv := questionView{ID: q.ID, Field: grading.FieldName(q.ID), Text: q.Text, Choices: make([]choiceView, 0, len(q.Choices))}
		for _, c := range q.Choices {
			cv := choiceView{ID: c.ID, Text: c.Text}
			if reveal {
				correct := c.Correct
				cv.Correct = &correct
			}
			qv.Choices = append(qv.Choices, cv)
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

type resultView struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"userId"`
	QuizID    string                   `json:"quizId"`
	Score     int                      `json:"score"`
	Total     int                      `json:"total"`
	Percent   *float64                 `json:"percent"`
	Outcomes  []domain.QuestionOutcome `json:"outcomes"`
	CreatedAt time.Time                `json:"createdAt"`
}

func newResultView(r domain.Result) resultView {
	return resultView{
		ID:        r.ID,
		UserID:    r.UserID,
		QuizID:    r.QuizID,
		Score:     r.Score,
		Total:     r.Total,
		Percent:   percent(r.Ratio()),
		Outcomes:  r.Outcomes,
		CreatedAt: r.CreatedAt,
	}
}

func newResultViews(results []domain.Result) []resultView {
	out := make([]resultView, 0, len(results))
	for _, r := range results {
		out = append(out, newResultView(r))
	}
	return out
}

type scoreView struct {
	Rank          int       `json:"rank,omitempty"`
	UserID        string    `json:"userId"`
	QuizID        string    `json:"quizId"`
	Attempts      int       `json:"attempts"`
	BestScore     int       `json:"bestScore"`
	BestTotal     int       `json:"bestTotal"`
	BestPercent   *float64  `json:"bestPercent"`
	BestAt        time.Time `json:"bestAt"`
	LatestScore   int       `json:"latestScore"`
	LatestTotal   int       `json:"latestTotal"`
	LatestPercent *float64  `json:"latestPercent"`
	LatestAt      time.Time `json:"latestAt"`
}

// newScoreViews renders summaries; ranked numbers them from 1 in order.
func newScoreViews(summaries []domain.ScoreSummary, ranked bool) []scoreView {
	out := make([]scoreView, 0, len(summaries))
	for i, s := range summaries {
		v := scoreView{
			UserID:        s.UserID,
			QuizID:        s.QuizID,
			Attempts:      s.Attempts,
			BestScore:     s.BestScore,
			BestTotal:     s.BestTotal,
			BestPercent:   percent(s.BestRatio()),
			BestAt:        s.BestAt,
			LatestScore:   s.LatestScore,
			LatestTotal:   s.LatestTotal,
			LatestPercent: percent(s.LatestRatio()),
			LatestAt:      s.LatestAt,
		}
		if ranked {
			v.Rank = i + 1
		}
		out = append(out, v)
	}
	return out
}

// percent rounds to two decimals; nil marks an undefined ratio.
func percent(r float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	p := math.Round(r*10000) / 100
	return &p
}
