package service

import (
	"errors"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/util"

	"gorm.io/gorm"
)

// SubmitAnswer records the caller's answer to one question of an active
// session. There is at most one attempt row per (quiz, user, question):
// a first-time answer creates the row and increments the session's answer
// counter, a resubmission overwrites the stored value in place without
// touching the counter. The deadline check runs before anything is saved,
// so an answer arriving after expiry is never scored.
func (s *QuizSessionService) SubmitAnswer(token string, userID, questionID uint, answer string) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}

	if !sess.HasQuestion(questionID) {
		return nil, util.ErrInvalidQuestion
	}

	existing, err := s.Attempts.Find(sess.QuizID, userID, questionID)
	switch {
	case err == nil:
		existing.Answer = answer
		if err := s.Attempts.Save(existing); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		attempt := &model.QuizAttempt{
			QuizID:     sess.QuizID,
			UserID:     userID,
			QuestionID: questionID,
			Answer:     answer,
		}
		if err := s.Attempts.Create(attempt); err != nil {
			return nil, err
		}
		sess.AnswersCount++
	default:
		return nil, err
	}

	sess.LastActivityAt = s.Clock.Now()
	if err := s.Sessions.Save(sess); err != nil {
		return nil, err
	}

	return s.snapshot(sess)
}
