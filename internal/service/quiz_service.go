package service

import (
	"errors"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/repository"
	"quiz_session_backend/internal/util"

	"gorm.io/gorm"
)

// QuizService exposes read access to published quizzes. Authoring lives in
// another system; this engine only ever reads quiz content.
type QuizService struct {
	QuizRepo *repository.QuizRepository
}

func NewQuizService(quizRepo *repository.QuizRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo}
}

type QuizOverview struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	QuestionCount    int    `json:"questionCount"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
	MaxAttempts      int    `json:"maxAttempts"`
}

func (s *QuizService) ListPublished(page, limit int) ([]model.Quiz, int64, error) {
	return s.QuizRepo.ListPublished(page, limit)
}

// GetOverview returns quiz facts a learner may see before starting: no
// questions and certainly no answer keys.
func (s *QuizService) GetOverview(id uint) (*QuizOverview, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotFound
	}

	questions, err := s.QuizRepo.Questions(id)
	if err != nil {
		return nil, err
	}

	maxAttempts := quiz.Settings.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &QuizOverview{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		QuestionCount:    len(questions),
		TimeLimitMinutes: quiz.Settings.TimeLimitMinutes,
		MaxAttempts:      maxAttempts,
	}, nil
}
