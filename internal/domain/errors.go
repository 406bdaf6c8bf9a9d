package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist (or was deleted).
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates the requested result does not exist.
	ErrResultNotFound = errors.New("result not found")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrDataIntegrity marks a malformed answer key (zero or several correct choices).
	ErrDataIntegrity = errors.New("answer key integrity violation")
	// ErrInvalidChoiceReference marks an answer that points outside its question.
	ErrInvalidChoiceReference = errors.New("invalid choice reference")
	// ErrEmptySubmission is returned when a submission carries no answers.
	ErrEmptySubmission = errors.New("empty submission")
	// ErrPersistence wraps storage failures while recording a result.
	ErrPersistence = errors.New("result not saved")
	// ErrForbidden is returned when the acting user may not modify the quiz.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidQuiz is returned when a quiz draft fails validation.
	ErrInvalidQuiz = errors.New("invalid quiz")
)
