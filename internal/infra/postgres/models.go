package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"qquiz-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Admin        bool      `bun:"is_admin,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          string    `bun:"id,pk"`
	OwnerID     string    `bun:"owner_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID       string `bun:"id,pk"`
	QuizID   string `bun:"quiz_id,notnull"`
	Position int    `bun:"position,notnull"`
	Text     string `bun:"text,notnull"`
}

type choiceRow struct {
	bun.BaseModel `bun:"table:choices,alias:ch"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id,notnull"`
	Position   int    `bun:"position,notnull"`
	Text       string `bun:"text,notnull"`
	Correct    bool   `bun:"is_correct,notnull"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	QuizID    string    `bun:"quiz_id,notnull"`
	Score     int       `bun:"score,notnull"`
	Total     int       `bun:"total,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type resultAnswerRow struct {
	bun.BaseModel `bun:"table:result_answers,alias:ra"`

	ResultID   string `bun:"result_id,pk"`
	Position   int    `bun:"position,pk"`
	QuestionID string `bun:"question_id,notnull"`
	ChoiceID   string `bun:"choice_id,notnull"`
	Answered   bool   `bun:"answered,notnull"`
	Correct    bool   `bun:"correct,notnull"`
}

func userFromRow(row userRow) domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Admin:        row.Admin,
		CreatedAt:    row.CreatedAt,
	}
}

// quizRows flattens quiz into its rows; positions follow slice order.
func quizRows(quiz domain.Quiz) (quizRow, []questionRow, []choiceRow) {
	qz := quizRow{
		ID:          quiz.ID,
		OwnerID:     quiz.OwnerID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
	questions := make([]questionRow, 0, len(quiz.Questions))
	var choices []choiceRow
	for i, q := range quiz.Questions {
		questions = append(questions, questionRow{ID: q.ID, QuizID: quiz.ID, Position: i, Text: q.Text})
		for j, c := range q.Choices {
			choices = append(choices, choiceRow{ID: c.ID, QuestionID: q.ID, Position: j, Text: c.Text, Correct: c.Correct})
		}
	}
	return qz, questions, choices
}

func resultFromRows(row resultRow, answers []resultAnswerRow) domain.Result {
	result := domain.Result{
		ID:        row.ID,
		UserID:    row.UserID,
		QuizID:    row.QuizID,
		Score:     row.Score,
		Total:     row.Total,
		Outcomes:  make([]domain.QuestionOutcome, 0, len(answers)),
		CreatedAt: row.CreatedAt,
	}
	for _, a := range answers {
		result.Outcomes = append(result.Outcomes, domain.QuestionOutcome{
			QuestionID: a.QuestionID,
			ChoiceID:   a.ChoiceID,
			Answered:   a.Answered,
			Correct:    a.Correct,
		})
	}
	return result
}
