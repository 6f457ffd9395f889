package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/util"
)

func TestSubmitAnswer_AfterDeadlineExpiresSession(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 3, model.QuizSettings{TimeLimitMinutes: 1})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "A"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// One second past the deadline.
	e.clock.Advance(61 * time.Second)

	_, err = e.svc.SubmitAnswer(snap.Token, 7, 102, "B")
	var expired *util.SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected SessionExpiredError, got %v", err)
	}
	if !errors.Is(err, util.ErrSessionExpired) {
		t.Error("SessionExpiredError must unwrap to ErrSessionExpired")
	}
	if expired.Submission == nil {
		t.Fatal("expected the auto-created submission attached")
	}

	// The late answer was never saved: only the pre-deadline one scored.
	if expired.Submission.Score != 1 {
		t.Errorf("expected score 1, got %d", expired.Submission.Score)
	}
	if !expired.Submission.Meta.AutoSubmitted {
		t.Error("timeout finalization must be marked auto-submitted")
	}

	stored, err := e.sessions.FindByToken(snap.Token, 7)
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if stored.Status != model.SessionExpired {
		t.Errorf("expected expired status, got %s", stored.Status)
	}
}

func TestGetSession_ExactlyAtDeadlineStillActive(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 3, model.QuizSettings{TimeLimitMinutes: 1})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// The deadline itself is still inside the window.
	e.clock.Advance(60 * time.Second)
	got, err := e.svc.GetSession(snap.Token, 7)
	if err != nil {
		t.Fatalf("GetSession at deadline: %v", err)
	}
	if got.Status != model.SessionInProgress {
		t.Errorf("expected in_progress at the deadline, got %s", got.Status)
	}
	if got.RemainingSeconds == nil || *got.RemainingSeconds != 0 {
		t.Errorf("expected 0 seconds remaining, got %v", got.RemainingSeconds)
	}
}

func TestGetResults_AfterDeadlineReturnsAutoSubmission(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 5})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "A"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	e.clock.Advance(10 * time.Minute)

	// The read itself finalizes the session and hands back the result.
	result, err := e.svc.GetResults(snap.Token, 7)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if !result.AutoSubmitted {
		t.Error("expected auto-submitted result")
	}
	if result.Score != 1 {
		t.Errorf("expected score 1, got %d", result.Score)
	}
	// Time taken is clamped to the window, not the 10 minutes that elapsed.
	if result.TimeTakenSeconds != 300 {
		t.Errorf("expected 300s taken, got %d", result.TimeTakenSeconds)
	}
}

func TestExpiry_FinalizesExactlyOnce(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 1})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	e.clock.Advance(2 * time.Minute)

	// Several expiry-observing calls in a row; only the first finalizes.
	for i := 0; i < 3; i++ {
		_, err := e.svc.GetResults(snap.Token, 7)
		if err != nil {
			t.Fatalf("GetResults %d: %v", i, err)
		}
	}
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "A"); err == nil {
		t.Fatal("expected error submitting to expired session")
	}

	if len(e.subs.subs) != 1 {
		t.Errorf("expected exactly one submission, got %d", len(e.subs.subs))
	}
}

func TestCompleteSession_AfterDeadlineRejected(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 1})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	e.clock.Advance(2 * time.Minute)

	_, err = e.svc.CompleteSession(snap.Token, 7)
	var expired *util.SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected SessionExpiredError, got %v", err)
	}
	if expired.Submission == nil {
		t.Fatal("expected the auto-created submission attached")
	}
	if !expired.Submission.Meta.AutoSubmitted {
		t.Error("expected auto-submitted submission")
	}
}

func TestSweepExpired_FinalizesOnlyDueSessions(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 1})
	e.seedQuiz(2, 2, model.QuizSettings{TimeLimitMinutes: 60})
	e.seedQuiz(3, 2, model.QuizSettings{})

	timed, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession timed: %v", err)
	}
	longTimed, err := e.svc.StartSession(2, 7)
	if err != nil {
		t.Fatalf("StartSession long: %v", err)
	}
	untimed, err := e.svc.StartSession(3, 7)
	if err != nil {
		t.Fatalf("StartSession untimed: %v", err)
	}

	e.clock.Advance(5 * time.Minute)

	outcomes, err := e.svc.SweepExpired()
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if !outcomes[0].Expired || outcomes[0].Error != "" {
		t.Errorf("unexpected outcome %+v", outcomes[0])
	}

	for _, tc := range []struct {
		token string
		want  model.SessionStatus
	}{
		{timed.Token, model.SessionExpired},
		{longTimed.Token, model.SessionInProgress},
		{untimed.Token, model.SessionInProgress},
	} {
		stored, err := e.sessions.FindByToken(tc.token, 7)
		if err != nil {
			t.Fatalf("FindByToken: %v", err)
		}
		if stored.Status != tc.want {
			t.Errorf("session %s: expected %s, got %s", tc.token, tc.want, stored.Status)
		}
	}

	if len(e.subs.subs) != 1 {
		t.Errorf("expected 1 submission from the sweep, got %d", len(e.subs.subs))
	}
}

func TestSweepExpired_OneFailureDoesNotAbortBatch(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 1})
	e.seedQuiz(2, 2, model.QuizSettings{TimeLimitMinutes: 1})

	a, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := e.svc.StartSession(2, 7); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// Quiz 1 cannot be scored; quiz 2 must still be finalized.
	e.quizzes.questionsErr[1] = fmt.Errorf("storage offline")

	e.clock.Advance(2 * time.Minute)
	outcomes, err := e.svc.SweepExpired()
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	var failed, expired int
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
		if o.Expired {
			expired++
		}
	}
	if failed != 1 || expired != 1 {
		t.Errorf("expected 1 failure and 1 expiry, got %d and %d", failed, expired)
	}

	// The failed session stays in progress and is retried next sweep.
	stored, err := e.sessions.FindByToken(a.Token, 7)
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if stored.Status != model.SessionInProgress {
		t.Errorf("failed session must stay in_progress, got %s", stored.Status)
	}

	e.quizzes.questionsErr = map[uint]error{}
	outcomes, err = e.svc.SweepExpired()
	if err != nil {
		t.Fatalf("second SweepExpired: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Expired {
		t.Errorf("expected retry to finalize the remaining session, got %+v", outcomes)
	}
}

func TestSweepAndCompleteRace_SingleTerminalState(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{TimeLimitMinutes: 1})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	e.clock.Advance(2 * time.Minute)

	// Sweep finalizes first; a completion arriving afterwards must surface
	// the sweep's submission instead of writing its own.
	if _, err := e.svc.SweepExpired(); err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}

	_, err = e.svc.CompleteSession(snap.Token, 7)
	var expired *util.SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected SessionExpiredError, got %v", err)
	}
	if expired.Submission == nil || !expired.Submission.Meta.AutoSubmitted {
		t.Error("expected the sweep's auto-submission to be surfaced")
	}
	if len(e.subs.subs) != 1 {
		t.Errorf("expected a single submission, got %d", len(e.subs.subs))
	}
}
