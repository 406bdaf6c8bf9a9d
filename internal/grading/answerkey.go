// Package grading maps submitted answers to deterministic score reports.
// Nothing in this package touches storage or the clock.
package grading

import (
	"fmt"

	"qquiz-service/internal/domain"
)

// QuestionKey is the answer key of a single question.
type QuestionKey struct {
	QuestionID string
	CorrectID  string
	valid      map[string]struct{}
}

// Valid reports whether choiceID is one of the question's own choices.
func (k QuestionKey) Valid(choiceID string) bool {
	_, ok := k.valid[choiceID]
	return ok
}

// AnswerKey indexes question keys by question ID.
type AnswerKey struct {
	questions map[string]QuestionKey
}

// Lookup returns the key for questionID.
func (a AnswerKey) Lookup(questionID string) (QuestionKey, bool) {
	k, ok := a.questions[questionID]
	return k, ok
}

// Len returns the number of indexed questions.
func (a AnswerKey) Len() int {
	return len(a.questions)
}

// KeyFor derives the key of q. Exactly one choice must be marked correct.
func KeyFor(q domain.Question) (QuestionKey, error) {
	key := QuestionKey{
		QuestionID: q.ID,
		valid:      make(map[string]struct{}, len(q.Choices)),
	}
	correct := 0
	for _, c := range q.Choices {
		if _, dup := key.valid[c.ID]; dup {
			return QuestionKey{}, fmt.Errorf("%w: question %s has duplicate choice %s", domain.ErrDataIntegrity, q.ID, c.ID)
		}
		key.valid[c.ID] = struct{}{}
		if c.Correct {
			correct++
			key.CorrectID = c.ID
		}
	}
	if correct != 1 {
		return QuestionKey{}, fmt.Errorf("%w: question %s has %d correct choices", domain.ErrDataIntegrity, q.ID, correct)
	}
	return key, nil
}

// BuildAnswerKey indexes every question of quiz.
func BuildAnswerKey(quiz domain.Quiz) (AnswerKey, error) {
	idx := AnswerKey{questions: make(map[string]QuestionKey, len(quiz.Questions))}
	for _, q := range quiz.Questions {
		if _, dup := idx.questions[q.ID]; dup {
			return AnswerKey{}, fmt.Errorf("%w: duplicate question %s in quiz %s", domain.ErrDataIntegrity, q.ID, quiz.ID)
		}
		key, err := KeyFor(q)
		if err != nil {
			return AnswerKey{}, err
		}
		idx.questions[q.ID] = key
	}
	return idx, nil
}
