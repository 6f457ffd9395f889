package service

import (
	"fmt"
	"math"

	"quiz_session_backend/internal/model"
)

type ScoreResult struct {
	Score      int     `json:"score"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ScoreAttempts grades a question set against the latest answers indexed by
// question id. Comparison is exact string equality, no normalization of
// case or whitespace; a missing answer counts as incorrect. Every question
// is worth exactly one point. Percentage is rounded to two decimals and is
// zero for an empty question set.
func ScoreAttempts(questions []model.QuizQuestion, answers map[uint]string) ScoreResult {
	correct := 0
	for _, q := range questions {
		if ans, ok := answers[q.ID]; ok && ans == q.CorrectAnswer {
			correct++
		}
	}

	total := len(questions)
	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(correct)/float64(total)*100*100) / 100
	}

	return ScoreResult{
		Score:      correct,
		Correct:    correct,
		Total:      total,
		Percentage: percentage,
	}
}

// AttemptAnswers indexes stored attempts by question id for the scorer.
func AttemptAnswers(attempts []model.QuizAttempt) map[uint]string {
	answers := make(map[uint]string, len(attempts))
	for _, a := range attempts {
		answers[a.QuestionID] = a.Answer
	}
	return answers
}

func feedbackFor(result ScoreResult) string {
	return fmt.Sprintf("You answered %d of %d questions correctly (%.2f%%)",
		result.Correct, result.Total, result.Percentage)
}
