package service

import (
	"errors"
	"math/rand"
	"time"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/util"
	"quiz_session_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizSessionService orchestrates the lifecycle of timed quiz attempts:
// start, resume, answer, navigate, complete, abandon, extend. Every
// operation that touches an existing session runs the deadline check first,
// so an expired session is finalized before the caller's request is applied.
type QuizSessionService struct {
	Quizzes     QuizStore
	Sessions    SessionStore
	Attempts    AttemptStore
	Submissions SubmissionStore

	Clock    Clock
	Rand     *rand.Rand
	NewToken func() (string, error)
	Logger   *zap.Logger
}

func NewQuizSessionService(quizzes QuizStore, sessions SessionStore, attempts AttemptStore, submissions SubmissionStore, log *zap.Logger) *QuizSessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizSessionService{
		Quizzes:     quizzes,
		Sessions:    sessions,
		Attempts:    attempts,
		Submissions: submissions,
		Clock:       systemClock{},
		Rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		NewToken:    util.NewSessionToken,
		Logger:      log,
	}
}

// StartSession begins an attempt, or resumes the caller's in-progress one.
// The question order is snapshotted here (shuffled when the quiz asks for
// it) and never recomputed, so resuming always sees the same order.
func (s *QuizSessionService) StartSession(quizID, userID uint) (*SessionSnapshot, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotFound
	}

	now := s.Clock.Now()
	if quiz.Settings.AvailableFrom != nil && now.Before(*quiz.Settings.AvailableFrom) {
		return nil, util.ErrQuizNotAvailable
	}
	if quiz.Settings.AvailableUntil != nil && now.After(*quiz.Settings.AvailableUntil) {
		return nil, util.ErrQuizNotAvailable
	}

	used, err := s.Submissions.CountByQuizUser(quizID, userID)
	if err != nil {
		return nil, err
	}
	maxAttempts := quiz.Settings.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if used >= int64(maxAttempts) {
		return nil, util.ErrAlreadyCompleted
	}

	// Idempotent start: an existing in-progress session is returned as-is.
	// The deadline check runs first, so a stale session is finalized here
	// instead of being handed back as resumable.
	if existing, err := s.Sessions.FindInProgress(quizID, userID); err == nil {
		derr := s.enforceDeadline(existing)
		if derr == nil {
			return s.snapshot(existing)
		}
		var expiredErr *util.SessionExpiredError
		if !errors.As(derr, &expiredErr) {
			return nil, derr
		}
		// The finalized attempt consumed a submission slot. Begin a fresh
		// attempt when one remains, otherwise report the expiry.
		used++
		if used >= int64(maxAttempts) {
			return nil, derr
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questions, err := s.Quizzes.Questions(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrEmptyQuiz
	}

	order := make([]uint, len(questions))
	for i, q := range questions {
		order[i] = q.ID
	}
	if quiz.Settings.ShuffleQuestions {
		s.Rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	var expiresAt *time.Time
	if quiz.Settings.TimeLimitMinutes > 0 {
		deadline := now.Add(time.Duration(quiz.Settings.TimeLimitMinutes) * time.Minute)
		expiresAt = &deadline
	}

	token, err := s.NewToken()
	if err != nil {
		return nil, err
	}

	sess := &model.QuizSession{
		Token:                token,
		QuizID:               quizID,
		UserID:               userID,
		Status:               model.SessionInProgress,
		StartedAt:            now,
		ExpiresAt:            expiresAt,
		LastActivityAt:       now,
		CurrentQuestionIndex: 0,
		TotalQuestions:       len(questions),
		AnswersCount:         0,
		QuestionOrder:        order,
	}
	if err := s.Sessions.Create(sess); err != nil {
		return nil, err
	}

	monitoring.SessionsStarted.Inc()
	s.Logger.Info("quiz session started",
		zap.Uint("quizId", quizID),
		zap.Uint("userId", userID),
		zap.Uint("sessionId", sess.ID))

	return s.snapshot(sess)
}

// GetSession resumes/reads an attempt. The deadline check runs first, so a
// session whose time ran out is finalized here and reported as expired.
func (s *QuizSessionService) GetSession(token string, userID uint) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.enforceDeadline(sess); err != nil {
		return nil, err
	}
	return s.snapshot(sess)
}

// CompleteSession finalizes an attempt explicitly: scores the saved
// answers, writes the submission and transitions the session to completed.
// The status guard makes a concurrent timeout finalize win exactly once.
func (s *QuizSessionService) CompleteSession(token string, userID uint) (*SessionResult, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}

	questions, err := s.Quizzes.Questions(sess.QuizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.ListByQuizUser(sess.QuizID, sess.UserID)
	if err != nil {
		return nil, err
	}
	result := ScoreAttempts(questions, AttemptAnswers(attempts))

	now := s.Clock.Now()
	won, err := s.Sessions.FinalizeIfInProgress(sess.ID, model.SessionCompleted, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.lostFinalizeRace(sess)
	}
	sess.Status = model.SessionCompleted
	sess.CompletedAt = &now

	sub := &model.QuizSubmission{
		SessionID:      sess.ID,
		QuizID:         sess.QuizID,
		UserID:         sess.UserID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		Feedback:       feedbackFor(result),
		Meta: model.SubmissionMeta{
			SchemaVersion:    model.MetaSchemaVersion,
			TimeTakenSeconds: int(now.Sub(sess.StartedAt).Seconds()),
			AutoSubmitted:    false,
		},
	}
	if err := s.Submissions.Create(sub); err != nil {
		return nil, err
	}

	monitoring.SessionsFinalized.WithLabelValues("completed").Inc()
	s.Logger.Info("quiz session completed",
		zap.Uint("sessionId", sess.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total))

	return resultFromSubmission(sub, sess), nil
}

// AbandonSession ends an attempt without scoring it. An abandoned session
// cannot be resumed and produces no submission.
func (s *QuizSessionService) AbandonSession(token string, userID uint) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	won, err := s.Sessions.FinalizeIfInProgress(sess.ID, model.SessionAbandoned, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.lostFinalizeRace(sess)
	}
	sess.Status = model.SessionAbandoned
	sess.CompletedAt = &now

	monitoring.SessionsFinalized.WithLabelValues("abandoned").Inc()
	s.Logger.Info("quiz session abandoned", zap.Uint("sessionId", sess.ID))

	return s.snapshot(sess)
}

// ExtendSession pushes the deadline of a timed session out by
// additionalMinutes.
func (s *QuizSessionService) ExtendSession(token string, userID uint, additionalMinutes int) (*SessionSnapshot, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInProgress(sess); err != nil {
		return nil, err
	}
	if sess.ExpiresAt == nil {
		return nil, util.ErrNoTimeLimit
	}

	deadline := sess.ExpiresAt.Add(time.Duration(additionalMinutes) * time.Minute)
	sess.ExpiresAt = &deadline
	sess.LastActivityAt = s.Clock.Now()
	if err := s.Sessions.Save(sess); err != nil {
		return nil, err
	}

	return s.snapshot(sess)
}

// GetResults returns the scored outcome of a finished session. If the
// deadline check fires here, the freshly auto-created submission is
// returned directly: the caller asked for results and they now exist.
func (s *QuizSessionService) GetResults(token string, userID uint) (*SessionResult, error) {
	sess, err := s.loadSession(token, userID)
	if err != nil {
		return nil, err
	}
	if err := s.enforceDeadline(sess); err != nil {
		var expired *util.SessionExpiredError
		if errors.As(err, &expired) && expired.Submission != nil {
			return resultFromSubmission(expired.Submission, sess), nil
		}
		return nil, err
	}

	sub, err := s.Submissions.FindBySession(sess.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	return resultFromSubmission(sub, sess), nil
}

// ListUserSessions returns the caller's attempt history newest-first.
func (s *QuizSessionService) ListUserSessions(userID uint) ([]model.QuizSession, error) {
	return s.Sessions.ListByUser(userID)
}

// ListUserSubmissions returns every scored outcome the caller owns.
func (s *QuizSessionService) ListUserSubmissions(userID uint) ([]model.QuizSubmission, error) {
	return s.Submissions.ListByUser(userID)
}

func (s *QuizSessionService) loadSession(token string, userID uint) (*model.QuizSession, error) {
	sess, err := s.Sessions.FindByToken(token, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidSession
		}
		return nil, err
	}
	return sess, nil
}

// ensureInProgress runs the deadline check and rejects terminal sessions.
// An already-expired session is reported with its submission attached so
// the caller can render the score instead of retrying.
func (s *QuizSessionService) ensureInProgress(sess *model.QuizSession) error {
	if err := s.enforceDeadline(sess); err != nil {
		return err
	}
	switch {
	case sess.Status == model.SessionExpired:
		sub, err := s.Submissions.FindBySession(sess.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return &util.SessionExpiredError{Submission: sub}
	case sess.Status.Terminal():
		return util.ErrAlreadyCompleted
	}
	return nil
}

// lostFinalizeRace re-reads a session after a guarded transition reported
// zero rows and translates the winner's outcome into this caller's error.
func (s *QuizSessionService) lostFinalizeRace(sess *model.QuizSession) error {
	fresh, err := s.Sessions.FindByID(sess.ID)
	if err != nil {
		return err
	}
	*sess = *fresh
	if sess.Status == model.SessionExpired {
		sub, err := s.Submissions.FindBySession(sess.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return &util.SessionExpiredError{Submission: sub}
	}
	return util.ErrAlreadyCompleted
}

// snapshot assembles the client-facing DTO from session + quiz + current
// question.
func (s *QuizSessionService) snapshot(sess *model.QuizSession) (*SessionSnapshot, error) {
	quiz, err := s.Quizzes.FindByID(sess.QuizID)
	if err != nil {
		return nil, err
	}

	snap := &SessionSnapshot{
		Token:                sess.Token,
		Status:               sess.Status,
		QuizID:               sess.QuizID,
		QuizTitle:            quiz.Title,
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
		TotalQuestions:       sess.TotalQuestions,
		AnswersCount:         sess.AnswersCount,
		StartedAt:            sess.StartedAt,
		ExpiresAt:            sess.ExpiresAt,
	}

	if sess.Status != model.SessionInProgress {
		return snap, nil
	}

	snap.HasNext = sess.CurrentQuestionIndex < sess.TotalQuestions-1
	snap.HasPrevious = sess.CurrentQuestionIndex > 0

	if sess.ExpiresAt != nil {
		remaining := int64(sess.ExpiresAt.Sub(s.Clock.Now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		snap.RemainingSeconds = &remaining
	}

	questions, err := s.Quizzes.Questions(sess.QuizID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	if idx := sess.CurrentQuestionIndex; idx >= 0 && idx < len(sess.QuestionOrder) {
		if q, ok := byID[sess.QuestionOrder[idx]]; ok {
			snap.Question = &QuestionView{
				ID:           q.ID,
				QuestionType: q.QuestionType,
				Content:      q.Content,
				Options:      q.Options,
				Position:     idx,
			}
		}
	}

	return snap, nil
}
