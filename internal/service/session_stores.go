package service

import (
	"time"

	"quiz_session_backend/internal/model"
)

// Clock abstracts wall-clock time so expiry logic is testable without real
// delays.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// The session engine reads and writes through these narrow store contracts.
// The gorm repositories satisfy them; tests substitute in-memory fakes.
// Lookups report a missing row with gorm.ErrRecordNotFound.

type QuizStore interface {
	FindByID(id uint) (*model.Quiz, error)
	Questions(quizID uint) ([]model.QuizQuestion, error)
}

type SessionStore interface {
	Create(sess *model.QuizSession) error
	FindByToken(token string, userID uint) (*model.QuizSession, error)
	FindInProgress(quizID, userID uint) (*model.QuizSession, error)
	FindByID(id uint) (*model.QuizSession, error)
	ListInProgress() ([]model.QuizSession, error)
	ListByUser(userID uint) ([]model.QuizSession, error)
	Save(sess *model.QuizSession) error
	// FinalizeIfInProgress transitions the session to the given terminal
	// status only if its stored status is still in_progress, reporting
	// whether this caller won the transition. This is the single guard that
	// prevents duplicate finalization under races.
	FinalizeIfInProgress(id uint, status model.SessionStatus, completedAt time.Time) (bool, error)
}

type AttemptStore interface {
	Find(quizID, userID, questionID uint) (*model.QuizAttempt, error)
	Create(attempt *model.QuizAttempt) error
	Save(attempt *model.QuizAttempt) error
	ListByQuizUser(quizID, userID uint) ([]model.QuizAttempt, error)
}

type SubmissionStore interface {
	Create(sub *model.QuizSubmission) error
	FindBySession(sessionID uint) (*model.QuizSubmission, error)
	CountByQuizUser(quizID, userID uint) (int64, error)
	ListByUser(userID uint) ([]model.QuizSubmission, error)
}
