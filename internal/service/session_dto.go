package service

import (
	"encoding/json"
	"time"

	"quiz_session_backend/internal/model"
)

// QuestionView is a question as shown to the learner: the correct answer
// never leaves the server.
type QuestionView struct {
	ID           uint            `json:"id"`
	QuestionType string          `json:"questionType"`
	Content      string          `json:"content"`
	Options      json.RawMessage `json:"options,omitempty"`
	Position     int             `json:"position"` // index within the session's question order
}

// SessionSnapshot is the state a client needs to render an attempt:
// session + quiz + current question + remaining time + navigation flags.
type SessionSnapshot struct {
	Token                string              `json:"token"`
	Status               model.SessionStatus `json:"status"`
	QuizID               uint                `json:"quizId"`
	QuizTitle            string              `json:"quizTitle"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	AnswersCount         int                 `json:"answersCount"`
	StartedAt            time.Time           `json:"startedAt"`
	ExpiresAt            *time.Time          `json:"expiresAt,omitempty"`
	RemainingSeconds     *int64              `json:"remainingSeconds,omitempty"`
	HasNext              bool                `json:"hasNext"`
	HasPrevious          bool                `json:"hasPrevious"`
	Question             *QuestionView       `json:"question,omitempty"`
}

// SessionResult is the scored outcome of a finished session.
type SessionResult struct {
	SubmissionID     string     `json:"submissionId"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"totalQuestions"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"timeTakenSeconds"`
	AutoSubmitted    bool       `json:"autoSubmitted"`
	Feedback         string     `json:"feedback"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func resultFromSubmission(sub *model.QuizSubmission, sess *model.QuizSession) *SessionResult {
	return &SessionResult{
		SubmissionID:     sub.ID,
		Score:            sub.Score,
		TotalQuestions:   sub.TotalQuestions,
		Percentage:       sub.Percentage,
		TimeTakenSeconds: sub.Meta.TimeTakenSeconds,
		AutoSubmitted:    sub.Meta.AutoSubmitted,
		Feedback:         sub.Feedback,
		CompletedAt:      sess.CompletedAt,
	}
}
