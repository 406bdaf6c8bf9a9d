package domain

import "time"

// User is an account that can author quizzes and submit answers.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Choice represents a possible answer for a question.
type Choice struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct choice.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// Quiz is an ordered collection of questions owned by its author.
type Quiz struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuizSummary is the listing view of a quiz.
type QuizSummary struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Answer is the normalized answer for one question of a submission.
// ChoiceID is empty when Answered is false.
type Answer struct {
	QuestionID string
	ChoiceID   string
	Answered   bool
}

// QuestionOutcome is the graded outcome of one question.
type QuestionOutcome struct {
	QuestionID string `json:"questionId"`
	ChoiceID   string `json:"choiceId,omitempty"`
	Answered   bool   `json:"answered"`
	Correct    bool   `json:"correct"`
}

// ScoreReport is the output of grading, prior to persistence.
type ScoreReport struct {
	QuizID   string            `json:"quizId"`
	Correct  int               `json:"correct"`
	Total    int               `json:"total"`
	Outcomes []QuestionOutcome `json:"outcomes"`
}

// Ratio returns Correct/Total. ok is false for a quiz without questions.
func (r ScoreReport) Ratio() (ratio float64, ok bool) {
	return ratioOf(r.Correct, r.Total)
}

// Result is one immutable graded submission.
type Result struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	QuizID    string            `json:"quizId"`
	Score     int               `json:"score"`
	Total     int               `json:"total"`
	Outcomes  []QuestionOutcome `json:"outcomes"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Ratio returns Score/Total. ok is false when Total is zero.
func (r Result) Ratio() (ratio float64, ok bool) {
	return ratioOf(r.Score, r.Total)
}

// ScoreSummary is a read-time rollup of a user's results for one quiz.
type ScoreSummary struct {
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	Attempts    int       `json:"attempts"`
	BestScore   int       `json:"bestScore"`
	BestTotal   int       `json:"bestTotal"`
	BestAt      time.Time `json:"bestAt"`
	LatestScore int       `json:"latestScore"`
	LatestTotal int       `json:"latestTotal"`
	LatestAt    time.Time `json:"latestAt"`
}

// BestRatio is the ratio of the best attempt.
func (s ScoreSummary) BestRatio() (float64, bool) {
	return ratioOf(s.BestScore, s.BestTotal)
}

// LatestRatio is the ratio of the most recent attempt.
func (s ScoreSummary) LatestRatio() (float64, bool) {
	return ratioOf(s.LatestScore, s.LatestTotal)
}

func ratioOf(score, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(score) / float64(total), true
}
