package service_test

import (
	"errors"
	"testing"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/util"
)

func TestSubmitAnswer_CountsFirstAnswerOnly(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 3, model.QuizSettings{})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	snap, err = e.svc.SubmitAnswer(snap.Token, 7, 101, "A")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if snap.AnswersCount != 1 {
		t.Errorf("expected answers count 1, got %d", snap.AnswersCount)
	}

	// Changing the answer overwrites in place, the counter stays put.
	snap, err = e.svc.SubmitAnswer(snap.Token, 7, 101, "different")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if snap.AnswersCount != 1 {
		t.Errorf("resubmission moved the counter to %d", snap.AnswersCount)
	}
	if len(e.attempts.attempts) != 1 {
		t.Errorf("expected 1 attempt row, got %d", len(e.attempts.attempts))
	}
	if e.attempts.attempts[0].Answer != "different" {
		t.Errorf("expected latest answer stored, got %q", e.attempts.attempts[0].Answer)
	}

	snap, err = e.svc.SubmitAnswer(snap.Token, 7, 102, "B")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if snap.AnswersCount != 2 {
		t.Errorf("expected answers count 2, got %d", snap.AnswersCount)
	}
}

func TestSubmitAnswer_LatestAnswerWinsAtScoring(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "wrong"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "A"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	result, err := e.svc.CompleteSession(snap.Token, 7)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("expected the corrected answer to score, got %d", result.Score)
	}
}

func TestSubmitAnswer_QuestionOutsideQuizRejected(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{})
	e.seedQuiz(2, 2, model.QuizSettings{})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// 201 belongs to quiz 2.
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 201, "A"); !errors.Is(err, util.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion, got %v", err)
	}
	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 9999, "A"); !errors.Is(err, util.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion for unknown id, got %v", err)
	}
	if len(e.attempts.attempts) != 0 {
		t.Errorf("rejected answers must not be stored, got %d rows", len(e.attempts.attempts))
	}
}

func TestSubmitAnswer_CompletedSessionRejected(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 2, model.QuizSettings{})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := e.svc.CompleteSession(snap.Token, 7); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if _, err := e.svc.SubmitAnswer(snap.Token, 7, 101, "A"); !errors.Is(err, util.ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestSubmitAnswer_AnswerableFromAnyCursorPosition(t *testing.T) {
	e := newEngine(t)
	e.seedQuiz(1, 3, model.QuizSettings{})

	snap, err := e.svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// Answer the last question while the cursor sits on the first.
	snap, err = e.svc.SubmitAnswer(snap.Token, 7, 103, "C")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if snap.CurrentQuestionIndex != 0 {
		t.Errorf("answering must not move the cursor, got %d", snap.CurrentQuestionIndex)
	}
	if snap.AnswersCount != 1 {
		t.Errorf("expected answers count 1, got %d", snap.AnswersCount)
	}
}
