package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	TimerTypeTotal       = "total"
	TimerTypePerQuestion = "per-question"

	FeedbackImmediate = "immediate"
	FeedbackEnd       = "end"
)

// QuizConfig captures the options a user picked when requesting a quiz.
// TimeLimit is minutes when TimerType is "total" and seconds when it is
// "per-question".
type QuizConfig struct {
	Topic              string  `json:"topic" gorm:"not null"`
	ExamContext        string  `json:"examContext,omitempty"`
	GradeLevel         string  `json:"gradeLevel,omitempty"`
	Difficulty         string  `json:"difficulty"`
	NumberOfQuestions  int     `json:"numberOfQuestions"`
	MarksPerQuestion   float64 `json:"marksPerQuestion"`
	NegativeMarking    bool    `json:"negativeMarking"`
	NegativeMarksValue float64 `json:"negativeMarksValue"`
	TimerEnabled       bool    `json:"timerEnabled"`
	TimerType          string  `json:"timerType,omitempty"`
	TimeLimit          int     `json:"timeLimit"`
	FeedbackStyle      string  `json:"feedbackStyle"`
}

// Quiz is immutable once created; there is no update path.
type Quiz struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    uint           `json:"-" gorm:"not null;index"`
	Config    QuizConfig     `json:"config" gorm:"embedded;embeddedPrefix:config_"`
	Questions []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type Question struct {
	ID            uint     `json:"-" gorm:"primaryKey"`
	QuizID        string   `json:"-" gorm:"size:36;index;not null"`
	Position      int      `json:"-" gorm:"not null"`
	Text          string   `json:"question" gorm:"not null"`
	Options       []Option `json:"-" gorm:"foreignKey:QuestionID"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Option struct {
	ID         uint   `json:"-" gorm:"primaryKey"`
	QuestionID uint   `json:"-" gorm:"index;not null"`
	Position   int    `json:"-" gorm:"not null"`
	Text       string `json:"text" gorm:"not null"`
}

// OptionTexts returns the option strings in stored order.
func (q Question) OptionTexts() []string {
	texts := make([]string, len(q.Options))
	for i, opt := range q.Options {
		texts[i] = opt.Text
	}
	return texts
}
