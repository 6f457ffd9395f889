package service

import (
	"errors"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/util"
	"quiz_session_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The engine owns no timer. A session's deadline is evaluated lazily here,
// at the top of every operation that touches the session, and proactively
// by SweepExpired for sessions nobody reads again. Both paths funnel into
// finalizeExpired, whose guarded status transition keeps the terminal
// outcome single even when they race.

// enforceDeadline finalizes the session if its time has run out. It fires
// only for in_progress timed sessions; when it does, the caller's original
// request must not be applied, so the returned SessionExpiredError carries
// the auto-created submission for immediate rendering.
func (s *QuizSessionService) enforceDeadline(sess *model.QuizSession) error {
	if sess.Status != model.SessionInProgress || sess.ExpiresAt == nil {
		return nil
	}
	if !s.Clock.Now().After(*sess.ExpiresAt) {
		return nil
	}

	sub, err := s.finalizeExpired(sess)
	if err != nil {
		return err
	}
	return &util.SessionExpiredError{Submission: sub}
}

// finalizeExpired scores whatever attempts exist at this instant, writes an
// auto-submitted submission and transitions the session to expired. If a
// concurrent caller already finalized the session, the guarded update is a
// no-op and the winner's submission is returned instead of a duplicate.
func (s *QuizSessionService) finalizeExpired(sess *model.QuizSession) (*model.QuizSubmission, error) {
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
	won, err := s.Sessions.FinalizeIfInProgress(sess.ID, model.SessionExpired, now)
	if err != nil {
		return nil, err
	}
	if !won {
		if fresh, err := s.Sessions.FindByID(sess.ID); err == nil {
			*sess = *fresh
		}
		sub, err := s.Submissions.FindBySession(sess.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return sub, nil
	}
	sess.Status = model.SessionExpired
	sess.CompletedAt = &now

	// The attempt can only have lasted as long as its window: the score
	// excludes anything after the deadline, so time taken does too.
	timeTaken := int(sess.ExpiresAt.Sub(sess.StartedAt).Seconds())

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
			TimeTakenSeconds: timeTaken,
			AutoSubmitted:    true,
		},
	}
	if err := s.Submissions.Create(sub); err != nil {
		return nil, err
	}

	monitoring.SessionsFinalized.WithLabelValues("expired").Inc()
	s.Logger.Info("quiz session expired, auto-submitted",
		zap.Uint("sessionId", sess.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total))

	return sub, nil
}

// SweepOutcome reports what happened to one session during a sweep.
type SweepOutcome struct {
	SessionID uint   `json:"sessionId"`
	Expired   bool   `json:"expired"`
	Error     string `json:"error,omitempty"`
}

// SweepExpired finalizes every in-progress session whose deadline has
// passed. Sessions are processed independently: one failure is logged and
// recorded but never aborts the rest of the batch. Failed sessions appear
// in the returned outcomes with Error set and Expired false; they stay
// in_progress and are picked up again on the next pass.
func (s *QuizSessionService) SweepExpired() ([]SweepOutcome, error) {
	sessions, err := s.Sessions.ListInProgress()
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	outcomes := make([]SweepOutcome, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		if sess.ExpiresAt == nil || !now.After(*sess.ExpiresAt) {
			continue
		}

		if _, err := s.finalizeExpired(sess); err != nil {
			monitoring.SweepFailures.Inc()
			s.Logger.Error("sweep: failed to finalize session",
				zap.Uint("sessionId", sess.ID),
				zap.Error(err))
			outcomes = append(outcomes, SweepOutcome{SessionID: sess.ID, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, SweepOutcome{SessionID: sess.ID, Expired: true})
	}

	return outcomes, nil
}
