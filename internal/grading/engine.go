package grading

import (
	"fmt"

	"qquiz-service/internal/domain"
)

// Grade scores answers against key. answers must hold one entry per quiz
// question in quiz order, as produced by Normalize. Unanswered questions count
// as incorrect and stay in the denominator.
func Grade(quiz domain.Quiz, answers []domain.Answer, key AnswerKey) (domain.ScoreReport, error) {
	if len(answers) != len(quiz.Questions) {
		return domain.ScoreReport{}, fmt.Errorf("%w: %d answers for %d questions", domain.ErrInvalidChoiceReference, len(answers), len(quiz.Questions))
	}

	report := domain.ScoreReport{
		QuizID:   quiz.ID,
		Total:    len(quiz.Questions),
		Outcomes: make([]domain.QuestionOutcome, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		answer := answers[i]
		if answer.QuestionID != q.ID {
			return domain.ScoreReport{}, fmt.Errorf("%w: answer %d targets question %s, expected %s", domain.ErrInvalidChoiceReference, i, answer.QuestionID, q.ID)
		}
		qk, ok := key.Lookup(q.ID)
		if !ok {
			return domain.ScoreReport{}, fmt.Errorf("%w: no answer key for question %s", domain.ErrDataIntegrity, q.ID)
		}
		if answer.Answered && !qk.Valid(answer.ChoiceID) {
			return domain.ScoreReport{}, fmt.Errorf("%w: choice %s does not belong to question %s", domain.ErrInvalidChoiceReference, answer.ChoiceID, q.ID)
		}

		correct := answer.Answered && answer.ChoiceID == qk.CorrectID
		report.Outcomes[i] = domain.QuestionOutcome{
			QuestionID: q.ID,
			ChoiceID:   answer.ChoiceID,
			Answered:   answer.Answered,
			Correct:    correct,
		}
		if correct {
			report.Correct++
		}
	}
	return report, nil
}

// GradeSubmission runs Normalize, BuildAnswerKey and Grade in sequence.
func GradeSubmission(quiz domain.Quiz, raw map[string]string, opts NormalizeOptions) (domain.ScoreReport, error) {
	answers, err := Normalize(quiz, raw, opts)
	if err != nil {
		return domain.ScoreReport{}, err
	}
	key, err := BuildAnswerKey(quiz)
	if err != nil {
		return domain.ScoreReport{}, err
	}
	return Grade(quiz, answers, key)
}
