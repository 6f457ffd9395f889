package repository

import (
	"time"

	"quiz_session_backend/internal/model"

	"gorm.io/gorm"
)

type QuizSessionRepository struct {
	DB *gorm.DB
}

func NewQuizSessionRepository(db *gorm.DB) *QuizSessionRepository {
	return &QuizSessionRepository{DB: db}
}

func (r *QuizSessionRepository) Create(sess *model.QuizSession) error {
	return r.DB.Create(sess).Error
}

func (r *QuizSessionRepository) FindByToken(token string, userID uint) (*model.QuizSession, error) {
	var sess model.QuizSession
	err := r.DB.Where("token = ? AND user_id = ?", token, userID).First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *QuizSessionRepository) FindInProgress(quizID, userID uint) (*model.QuizSession, error) {
	var sess model.QuizSession
	err := r.DB.Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, model.SessionInProgress).
		First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *QuizSessionRepository) FindByID(id uint) (*model.QuizSession, error) {
	var sess model.QuizSession
	err := r.DB.First(&sess, id).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *QuizSessionRepository) ListInProgress() ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	err := r.DB.Where("status = ?", model.SessionInProgress).Find(&sessions).Error
	return sessions, err
}

func (r *QuizSessionRepository) ListByUser(userID uint) ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	err := r.DB.Where("user_id = ?", userID).Order("started_at desc").Find(&sessions).Error
	return sessions, err
}

func (r *QuizSessionRepository) Save(sess *model.QuizSession) error {
	return r.DB.Save(sess).Error
}

// FinalizeIfInProgress applies the terminal transition behind a status
// guard: the UPDATE only matches while the row still says in_progress, so
// of two racing finalizers exactly one sees rows-affected = 1.
func (r *QuizSessionRepository) FinalizeIfInProgress(id uint, status model.SessionStatus, completedAt time.Time) (bool, error) {
	res := r.DB.Model(&model.QuizSession{}).
		Where("id = ? AND status = ?", id, model.SessionInProgress).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
