package model

// QuizAttempt stores the latest answer a user gave for one question of a
// quiz. One row per (quiz, user, question); a resubmission overwrites the
// row instead of appending.
//
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	QuizID     uint   `gorm:"uniqueIndex:idx_attempt_quiz_user_question;type:bigint unsigned" json:"quizId"`
	UserID     uint   `gorm:"uniqueIndex:idx_attempt_quiz_user_question;type:bigint unsigned" json:"userId"`
	QuestionID uint   `gorm:"uniqueIndex:idx_attempt_quiz_user_question;type:bigint unsigned" json:"questionId"`
	Answer     string `gorm:"type:text" json:"answer"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
