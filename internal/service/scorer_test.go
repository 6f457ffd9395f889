package service_test

import (
	"testing"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/service"
)

func questionSet(answers ...string) []model.QuizQuestion {
	qs := make([]model.QuizQuestion, len(answers))
	for i, ans := range answers {
		q := model.QuizQuestion{CorrectAnswer: ans}
		q.ID = uint(i + 1)
		qs[i] = q
	}
	return qs
}

func TestScoreAttempts_AllCorrect(t *testing.T) {
	questions := questionSet("A", "B", "C")
	result := service.ScoreAttempts(questions, map[uint]string{1: "A", 2: "B", 3: "C"})

	if result.Score != 3 {
		t.Errorf("expected score 3, got %d", result.Score)
	}
	if result.Percentage != 100 {
		t.Errorf("expected 100%%, got %v", result.Percentage)
	}
}

func TestScoreAttempts_MissingAnswersAreIncorrect(t *testing.T) {
	questions := questionSet("A", "B", "C")
	result := service.ScoreAttempts(questions, map[uint]string{1: "A"})

	if result.Score != 1 {
		t.Errorf("expected score 1, got %d", result.Score)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
}

func TestScoreAttempts_ExactStringEquality(t *testing.T) {
	questions := questionSet("Paris")

	cases := map[string]int{
		"Paris":  1,
		"paris":  0,
		"Paris ": 0,
		" Paris": 0,
		"":       0,
	}
	for answer, want := range cases {
		result := service.ScoreAttempts(questions, map[uint]string{1: answer})
		if result.Score != want {
			t.Errorf("answer %q: expected score %d, got %d", answer, want, result.Score)
		}
	}
}

func TestScoreAttempts_PercentageRoundsToTwoDecimals(t *testing.T) {
	questions := questionSet("A", "B", "C")
	result := service.ScoreAttempts(questions, map[uint]string{1: "A"})

	if result.Percentage != 33.33 {
		t.Errorf("expected 33.33, got %v", result.Percentage)
	}

	questions = questionSet("A", "B", "C", "D", "E", "F")
	result = service.ScoreAttempts(questions, map[uint]string{1: "A"})
	if result.Percentage != 16.67 {
		t.Errorf("expected 16.67, got %v", result.Percentage)
	}
}

func TestScoreAttempts_EmptyQuestionSet(t *testing.T) {
	result := service.ScoreAttempts(nil, nil)

	if result.Score != 0 || result.Total != 0 {
		t.Errorf("expected zero score and total, got %d/%d", result.Score, result.Total)
	}
	if result.Percentage != 0 {
		t.Errorf("expected 0%% for empty set, got %v", result.Percentage)
	}
}

func TestAttemptAnswers_LatestRowWins(t *testing.T) {
	attempts := []model.QuizAttempt{
		{QuestionID: 1, Answer: "old"},
		{QuestionID: 1, Answer: "new"},
		{QuestionID: 2, Answer: "B"},
	}

	answers := service.AttemptAnswers(attempts)
	if answers[1] != "new" {
		t.Errorf("expected later attempt to win, got %q", answers[1])
	}
	if len(answers) != 2 {
		t.Errorf("expected 2 distinct questions, got %d", len(answers))
	}
}
