package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz_session_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	quizCacheKeyPrefix      = "quiz:meta:"
	questionsCacheKeyPrefix = "quiz:questions:"
	quizCacheTTL            = 10 * time.Minute
)

// QuizRepository reads quiz content. Quizzes are immutable from the
// engine's point of view, so cached copies never need invalidation; the
// TTL only bounds staleness against out-of-band authoring changes.
type QuizRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewQuizRepository(db *gorm.DB, rdb *redis.Client) *QuizRepository {
	return &QuizRepository{DB: db, Redis: rdb}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	cacheKey := fmt.Sprintf("%s%d", quizCacheKeyPrefix, id)
	if r.Redis != nil {
		if val, err := r.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var quiz model.Quiz
			if json.Unmarshal([]byte(val), &quiz) == nil {
				return &quiz, nil
			}
		}
	}

	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(quiz); err == nil {
			r.Redis.Set(context.Background(), cacheKey, data, quizCacheTTL)
		}
	}
	return &quiz, nil
}

func (r *QuizRepository) Questions(quizID uint) ([]model.QuizQuestion, error) {
	cacheKey := fmt.Sprintf("%s%d", questionsCacheKeyPrefix, quizID)
	if r.Redis != nil {
		if val, err := r.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var questions []model.QuizQuestion
			if json.Unmarshal([]byte(val), &questions) == nil {
				return questions, nil
			}
		}
	}

	var questions []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("`order` asc, created_at asc").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(questions); err == nil {
			r.Redis.Set(context.Background(), cacheKey, data, quizCacheTTL)
		}
	}
	return questions, nil
}

func (r *QuizRepository) ListPublished(page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	query := r.DB.Model(&model.Quiz{}).Where("is_published = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&quizzes).Error
	return quizzes, total, err
}
