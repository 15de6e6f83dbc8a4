// Package scoring computes attempt scores. It is the single authoritative
// scoring path: the live session uses it per question for display and the
// attempt recorder re-runs it wholesale over the stored quiz.
package scoring

import (
	"math"

	"quizforge/internal/models"
)

// Result is a derived score triple. Score is rounded to two decimals,
// Percentage to one.
type Result struct {
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage float64 `json:"percentage"`
}

// Score grades an answer vector against the stored questions and config.
// Callers must guarantee len(answers) == len(questions); the function itself
// is total and never fails. A nil answer entry is unanswered and contributes
// zero. An out-of-range answer index simply never matches. Negative totals
// are not clamped. Rounding happens once, on the final sum.
func Score(questions []models.Question, cfg models.QuizConfig, answers models.AnswerVector) Result {
	var sum float64
	for i, q := range questions {
		sum += contribution(q, cfg, answers[i])
	}

	score := round2(sum)
	maxScore := round2(float64(len(questions)) * cfg.MarksPerQuestion)

	percentage := 0.0
	if maxScore > 0 {
		percentage = round1(score / maxScore * 100)
	}

	return Result{Score: score, MaxScore: maxScore, Percentage: percentage}
}

// ScoreOne returns the unrounded contribution of a single question, used by
// the session engine for the presentational running total in immediate mode.
func ScoreOne(q models.Question, cfg models.QuizConfig, answer *int) float64 {
	return contribution(q, cfg, answer)
}

func contribution(q models.Question, cfg models.QuizConfig, answer *int) float64 {
	if answer == nil {
		return 0
	}
	if *answer == q.CorrectAnswer {
		return cfg.MarksPerQuestion
	}
	if cfg.NegativeMarking {
		return -cfg.NegativeMarksValue
	}
	return 0
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
