package app

import (
	"errors"
	"fmt"
	"strings"

	"qquiz-service/internal/domain"
)

// ChoiceDraft is one choice of a question being authored.
type ChoiceDraft struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionDraft is one question being authored.
type QuestionDraft struct {
	Text    string        `json:"text"`
	Choices []ChoiceDraft `json:"choices"`
}

// QuizDraft is the structured authoring input of a quiz.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
}

const minChoices = 2

// BuildQuiz validates draft and assembles a quiz with fresh IDs. Nothing is
// built when any question is invalid.
func BuildQuiz(ownerID string, draft QuizDraft, newID func() string) (domain.Quiz, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return domain.Quiz{}, fmt.Errorf("%w: title is required", domain.ErrInvalidQuiz)
	}
	if len(draft.Questions) == 0 {
		return domain.Quiz{}, fmt.Errorf("%w: at least one question is required", domain.ErrInvalidQuiz)
	}
	for i, q := range draft.Questions {
		if err := validateQuestion(q); err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: question %d: %s", domain.ErrInvalidQuiz, i+1, err)
		}
	}

	quiz := domain.Quiz{
		ID:          newID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Questions:   make([]domain.Question, 0, len(draft.Questions)),
	}
	for _, q := range draft.Questions {
		question := domain.Question{
			ID:      newID(),
			Text:    strings.TrimSpace(q.Text),
			Choices: make([]domain.Choice, 0, len(q.Choices)),
		}
		for _, c := range q.Choices {
			question.Choices = append(question.Choices, domain.Choice{
				ID:      newID(),
				Text:    strings.TrimSpace(c.Text),
				Correct: c.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func validateQuestion(q QuestionDraft) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("text is required")
	}
	if len(q.Choices) < minChoices {
		return fmt.Errorf("at least %d choices are required", minChoices)
	}
	correct := 0
	for j, c := range q.Choices {
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("choice %d: text is required", j+1)
		}
		if c.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("exactly one correct choice is required, got %d", correct)
	}
	return nil
}
