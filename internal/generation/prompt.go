package generation

import (
	"fmt"
	"strings"

	"quizforge/internal/models"
)

// BuildQuizPrompt renders the deterministic generation prompt. It embeds the
// structural contract for the expected JSON array and instructs the model to
// return nothing else.
func BuildQuizPrompt(cfg models.QuizConfig) string {
	gradeLevel := cfg.GradeLevel
	if gradeLevel == "" {
		gradeLevel = "general"
	}
	difficulty := cfg.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple choice questions about %s for %s level at %s difficulty.\n",
		cfg.NumberOfQuestions, cfg.Topic, gradeLevel, difficulty)
	if cfg.ExamContext != "" {
		fmt.Fprintf(&b, "The context is: %s\n", cfg.ExamContext)
	}
	b.WriteString(`
Return ONLY a JSON array of questions. Each question must have this exact structure:
{
  "question": "question text",
  "options": ["option1", "option2", "option3", "option4"],
  "correctAnswer": 0,
  "explanation": "explanation text"
}

Requirements:
1. Each question must be clear and specific
2. All four options must be distinct and relevant
3. correctAnswer must be a number (0-3) indicating the index of the correct option
4. The explanation must clearly justify why the correct answer is right

DO NOT include any text before or after the JSON array. The response must start with '[' and end with ']'.`)
	return b.String()
}

// BuildExplanationPrompt asks for a tailored explanation of one answered
// question, used by the on-demand explain endpoint.
func BuildExplanationPrompt(q models.QuestionDTO, userAnswer int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nOptions:\n", q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%c. %s\n", 'A'+i, opt)
	}
	fmt.Fprintf(&b, "\nCorrect answer: %c. %s\n", 'A'+q.CorrectAnswer, option(q.Options, q.CorrectAnswer))
	fmt.Fprintf(&b, "User's answer: %c. %s\n", 'A'+userAnswer, option(q.Options, userAnswer))
	b.WriteString(`
Please provide a detailed, educational explanation of why the correct answer is correct.
If the user's answer is incorrect, explain why it's wrong and what makes the correct answer right.
Include relevant facts, context, and make the explanation engaging and informative.`)
	return b.String()
}

func option(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}
