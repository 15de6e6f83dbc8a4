package models

import "time"

// QuestionDTO is the wire shape for a question: options flattened to the
// four strings the client renders.
type QuestionDTO struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func (q Question) ToDTO() QuestionDTO {
	return QuestionDTO{
		Text:          q.Text,
		Options:       q.OptionTexts(),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

// QuizDTO is the take-a-quiz payload. It never carries the owner.
type QuizDTO struct {
	ID        string        `json:"id"`
	Config    QuizConfig    `json:"config"`
	Questions []QuestionDTO `json:"questions"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (q Quiz) ToDTO() QuizDTO {
	questions := make([]QuestionDTO, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = question.ToDTO()
	}
	return QuizDTO{
		ID:        q.ID,
		Config:    q.Config,
		Questions: questions,
		CreatedAt: q.CreatedAt,
	}
}

// QuizSummaryDTO is the dashboard list projection.
type QuizSummaryDTO struct {
	ID                string    `json:"id"`
	Topic             string    `json:"topic"`
	NumberOfQuestions int       `json:"numberOfQuestions"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (q Quiz) ToSummaryDTO() QuizSummaryDTO {
	return QuizSummaryDTO{
		ID:                q.ID,
		Topic:             q.Config.Topic,
		NumberOfQuestions: q.Config.NumberOfQuestions,
		CreatedAt:         q.CreatedAt,
	}
}

// AttemptResultDTO combines an attempt with the quiz it was taken against,
// which the review view needs for questions and explanations.
type AttemptResultDTO struct {
	ID          string       `json:"id"`
	QuizID      string       `json:"quizId"`
	Answers     AnswerVector `json:"answers"`
	Score       float64      `json:"score"`
	MaxScore    float64      `json:"maxScore"`
	Percentage  float64      `json:"percentage"`
	CompletedAt time.Time    `json:"completedAt"`
	Quiz        QuizDTO      `json:"quiz"`
}
