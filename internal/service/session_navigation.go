package service

import (
	"quiz_session_backend/internal/util"
)

// Cursor movement over the question order snapshotted at session start.
// Both directions are bounds-checked and never mutate state when rejected.

func (s *QuizSessionService) NextQuestion(token string, userID uint) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}

	if sess.CurrentQuestionIndex >= sess.TotalQuestions-1 {
		return nil, util.ErrAtLastQuestion
	}

	sess.CurrentQuestionIndex++
	sess.LastActivityAt = s.Clock.Now()
	if err := s.Sessions.Save(sess); err != nil {
		return nil, err
	}

	return s.snapshot(sess)
}

func (s *QuizSessionService) PreviousQuestion(token string, userID uint) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}

	if sess.CurrentQuestionIndex <= 0 {
		return nil, util.ErrAtFirstQuestion
	}

	sess.CurrentQuestionIndex--
	sess.LastActivityAt = s.Clock.Now()
	if err := s.Sessions.Save(sess); err != nil {
		return nil, err
	}

	return s.snapshot(sess)
}
