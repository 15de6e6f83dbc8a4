package generation

import (
	"quizforge/internal/models"
)

// ValidateQuestionSet checks a parsed, untyped JSON value against the
// question schema and converts it into typed questions. The contract:
//
//   - the value must be a non-empty array
//   - every element needs non-empty question text, exactly four options,
//     a numeric correctAnswer and a present (possibly empty) explanation
//
// The first offending element rejects the whole set. correctAnswer bounds
// are deliberately not checked here; an out-of-range index never matches
// during scoring.
func ValidateQuestionSet(parsed interface{}) ([]models.Question, error) {
	items, ok := parsed.([]interface{})
	if !ok {
		return nil, &SchemaViolationError{Index: -1, Reason: "expected a JSON array of questions"}
	}
	if len(items) == 0 {
		return nil, &SchemaViolationError{Index: -1, Reason: "question array is empty"}
	}

	questions := make([]models.Question, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, &SchemaViolationError{Index: i, Reason: "question is not an object"}
		}

		text, ok := obj["question"].(string)
		if !ok || text == "" {
			return nil, &SchemaViolationError{Index: i, Reason: "question text is missing or empty"}
		}

		rawOptions, ok := obj["options"].([]interface{})
		if !ok {
			return nil, &SchemaViolationError{Index: i, Reason: "options is not an array"}
		}
		if len(rawOptions) != 4 {
			return nil, &SchemaViolationError{Index: i, Reason: "options must contain exactly 4 entries"}
		}
		options := make([]models.Option, len(rawOptions))
		for j, rawOpt := range rawOptions {
			optText, ok := rawOpt.(string)
			if !ok {
				return nil, &SchemaViolationError{Index: i, Reason: "option is not a string"}
			}
			options[j] = models.Option{Position: j, Text: optText}
		}

		// JSON numbers decode as float64; normalize to the option index.
		correct, ok := obj["correctAnswer"].(float64)
		if !ok {
			return nil, &SchemaViolationError{Index: i, Reason: "correctAnswer is not a number"}
		}

		explanation, ok := obj["explanation"].(string)
		if !ok {
			return nil, &SchemaViolationError{Index: i, Reason: "explanation is missing"}
		}

		questions = append(questions, models.Question{
			Position:      i,
			Text:          text,
			Options:       options,
			CorrectAnswer: int(correct),
			Explanation:   explanation,
		})
	}

	return questions, nil
}
