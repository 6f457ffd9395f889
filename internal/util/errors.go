package util

import (
	"errors"
	"fmt"

	"quiz_session_backend/internal/model"
)

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotAvailable   = errors.New("quiz not currently available")
	ErrAlreadyCompleted   = errors.New("attempt already completed")
	ErrEmptyQuiz          = errors.New("quiz has no questions")
	ErrInvalidQuestion    = errors.New("question does not belong to quiz")
	ErrInvalidSession     = errors.New("session not found for user")
	ErrAtFirstQuestion    = errors.New("already at first question")
	ErrAtLastQuestion     = errors.New("already at last question")
	ErrNoTimeLimit        = errors.New("session has no time limit")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is the errors.Is target for SessionExpiredError.
	ErrSessionExpired = errors.New("session expired")
)

// SessionExpiredError is returned when the deadline check fires during a
// call (or the session was already expired). It carries the submission the
// timeout path wrote so callers can render results immediately instead of
// retrying; Submission may be nil in the narrow window before the race
// winner has written it.
type SessionExpiredError struct {
	Submission *model.QuizSubmission
}

func (e *SessionExpiredError) Error() string {
	if e.Submission != nil {
		return fmt.Sprintf("session expired, auto-scored %d/%d from previously saved answers",
			e.Submission.Score, e.Submission.TotalQuestions)
	}
	return "session expired"
}

func (e *SessionExpiredError) Unwrap() error {
	return ErrSessionExpired
}
