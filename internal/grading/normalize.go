package grading

import (
	"fmt"
	"strings"

	"qquiz-service/internal/domain"
)

// FieldPrefix prefixes the form field carrying the answer to a question.
const FieldPrefix = "question_"

// FieldName returns the form field name for questionID.
func FieldName(questionID string) string {
	return FieldPrefix + questionID
}

// NormalizeOptions tunes submission validation.
type NormalizeOptions struct {
	// RequireAnswer rejects submissions whose question fields are all blank.
	RequireAnswer bool
}

// Normalize validates raw form input against quiz and returns one answer per
// question in quiz order. Fields without FieldPrefix are ignored.
func Normalize(quiz domain.Quiz, raw map[string]string, opts NormalizeOptions) ([]domain.Answer, error) {
	byQuestion := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		byQuestion[q.ID] = i
	}

	submitted := make(map[string]string, len(raw))
	for field, value := range raw {
		questionID, ok := strings.CutPrefix(field, FieldPrefix)
		if !ok {
			continue
		}
		if _, known := byQuestion[questionID]; !known {
			return nil, fmt.Errorf("%w: question %s is not part of quiz %s", domain.ErrInvalidChoiceReference, questionID, quiz.ID)
		}
		submitted[questionID] = strings.TrimSpace(value)
	}
	if len(submitted) == 0 {
		return nil, domain.ErrEmptySubmission
	}

	answers := make([]domain.Answer, len(quiz.Questions))
	answered := 0
	for i, q := range quiz.Questions {
		answers[i] = domain.Answer{QuestionID: q.ID}
		choiceID := submitted[q.ID]
		if choiceID == "" {
			continue
		}
		if !hasChoice(q, choiceID) {
			return nil, fmt.Errorf("%w: choice %s does not belong to question %s", domain.ErrInvalidChoiceReference, choiceID, q.ID)
		}
		answers[i].ChoiceID = choiceID
		answers[i].Answered = true
		answered++
	}
	if answered == 0 && opts.RequireAnswer {
		return nil, domain.ErrEmptySubmission
	}
	return answers, nil
}

func hasChoice(q domain.Question, choiceID string) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}
