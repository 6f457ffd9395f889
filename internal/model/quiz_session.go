package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further mutation is permitted on a session
// with this status.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionExpired || s == SessionAbandoned
}

// swagger:model QuizSession
type QuizSession struct {
	BaseModel
	Token                string        `gorm:"size:64;uniqueIndex;not null" json:"token"`
	QuizID               uint          `gorm:"index:idx_session_quiz_user;type:bigint unsigned" json:"quizId"`
	UserID               uint          `gorm:"index:idx_session_quiz_user;type:bigint unsigned" json:"userId"`
	Status               SessionStatus `gorm:"size:20;default:'in_progress';index" json:"status"`
	StartedAt            time.Time     `json:"startedAt"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	ExpiresAt            *time.Time    `json:"expiresAt,omitempty"` // nil = untimed
	LastActivityAt       time.Time     `json:"lastActivityAt"`
	CurrentQuestionIndex int           `gorm:"default:0" json:"currentQuestionIndex"`
	TotalQuestions       int           `json:"totalQuestions"`
	AnswersCount         int           `gorm:"default:0" json:"answersCount"`
	// QuestionOrder is the question-id permutation snapshotted at creation;
	// it never changes across resumes even when shuffling is enabled.
	QuestionOrder []uint `gorm:"type:json;serializer:json" json:"questionOrder"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// HasQuestion reports whether qid is part of the snapshot taken at start.
func (s *QuizSession) HasQuestion(qid uint) bool {
	for _, id := range s.QuestionOrder {
		if id == qid {
			return true
		}
	}
	return false
}
