package model

// MetaSchemaVersion is the current shape of SubmissionMeta.
const MetaSchemaVersion = 1

// SubmissionMeta travels as a JSON column on the submission row.
type SubmissionMeta struct {
	SchemaVersion    int  `json:"schemaVersion"`
	TimeTakenSeconds int  `json:"timeTakenSeconds"`
	AutoSubmitted    bool `json:"autoSubmitted"`
}

// QuizSubmission is the terminal scored record of a finished session.
// Exactly one exists per completed/expired session and it is never mutated
// after creation.
//
// swagger:model QuizSubmission
type QuizSubmission struct {
	UUIDBase
	SessionID      uint           `gorm:"uniqueIndex;type:bigint unsigned" json:"sessionId"`
	QuizID         uint           `gorm:"index:idx_submission_quiz_user;type:bigint unsigned" json:"quizId"`
	UserID         uint           `gorm:"index:idx_submission_quiz_user;type:bigint unsigned" json:"userId"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     float64        `json:"percentage"`
	Feedback       string         `gorm:"type:text" json:"feedback"`
	Meta           SubmissionMeta `gorm:"type:json;serializer:json" json:"meta"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}
