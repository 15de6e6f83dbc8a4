package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerVector holds one entry per quiz question. A nil entry is the
// unanswered sentinel, otherwise the entry is the selected option index.
type AnswerVector []*int

func (v AnswerVector) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *AnswerVector) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into AnswerVector", src)
	}
}

// Attempt records one completed pass through a quiz. Score, MaxScore and
// Percentage are always derived server-side; attempts are create-once and
// never mutated.
type Attempt struct {
	ID          string       `json:"id" gorm:"primaryKey;size:36"`
	QuizID      string       `json:"quizId" gorm:"size:36;index;not null"`
	UserID      uint         `json:"-" gorm:"index;not null"`
	Answers     AnswerVector `json:"answers" gorm:"type:jsonb;not null"`
	Score       float64      `json:"score"`
	MaxScore    float64      `json:"maxScore"`
	Percentage  float64      `json:"percentage"`
	CompletedAt time.Time    `json:"completedAt"`
}
