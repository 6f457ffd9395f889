package model

import (
	"encoding/json"
	"time"
)

// QuizSettings travels as a JSON column. SchemaVersion guards future field
// additions; version 1 is the shape below.
type QuizSettings struct {
	SchemaVersion    int        `json:"schemaVersion"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"` // 0 = untimed
	ShuffleQuestions bool       `json:"shuffleQuestions"`
	MaxAttempts      int        `json:"maxAttempts"` // <=1 means a single attempt
	AvailableFrom    *time.Time `json:"availableFrom,omitempty"`
	AvailableUntil   *time.Time `json:"availableUntil,omitempty"`
}

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	IsPublished bool         `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	CreatorID   uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Settings    QuizSettings `gorm:"type:json;serializer:json" json:"settings"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID        uint            `gorm:"index;type:bigint unsigned" json:"quizId"`
	QuestionType  string          `gorm:"size:50;not null" json:"questionType"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	// CorrectAnswer is only ever sent to clients through QuestionView-style
	// DTOs, which omit it.
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer"`
	Explanation   string          `gorm:"type:text" json:"explanation,omitempty"`
	Order         int             `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
