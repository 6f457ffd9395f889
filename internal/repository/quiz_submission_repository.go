package repository

import (
	"quiz_session_backend/internal/model"

	"gorm.io/gorm"
)

type QuizSubmissionRepository struct {
	DB *gorm.DB
}

func NewQuizSubmissionRepository(db *gorm.DB) *QuizSubmissionRepository {
	return &QuizSubmissionRepository{DB: db}
}

func (r *QuizSubmissionRepository) Create(sub *model.QuizSubmission) error {
	return r.DB.Create(sub).Error
}

func (r *QuizSubmissionRepository) FindBySession(sessionID uint) (*model.QuizSubmission, error) {
	var sub model.QuizSubmission
	err := r.DB.Where("session_id = ?", sessionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *QuizSubmissionRepository) CountByQuizUser(quizID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizSubmission{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}

func (r *QuizSubmissionRepository) ListByUser(userID uint) ([]model.QuizSubmission, error) {
	var subs []model.QuizSubmission
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&subs).Error
	return subs, err
}
