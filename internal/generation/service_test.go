package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"quizforge/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeStore struct {
	created *models.Quiz
	err     error
}

func (f *fakeStore) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	if f.err != nil {
		return f.err
	}
	f.created = quiz
	return nil
}

const modelOutput = "```json\n" + `[
	{"question": "What is 2+2?", "options": ["3", "4", "5", "6"], "correctAnswer": 1, "explanation": "Basic arithmetic."},
	{"question": "Capital of France?", "options": ["Lyon", "Nice", "Paris", "Lille"], "correctAnswer": 2, "explanation": ""}
]` + "\n```"

func validConfig() models.QuizConfig {
	return models.QuizConfig{
		Topic:             "Arithmetic",
		NumberOfQuestions: 2,
		MarksPerQuestion:  1,
	}
}

func newTestService(gen TextGenerator, store QuizStore) *Service {
	return NewService(gen, store, zap.NewNop().Sugar())
}

func TestGenerateHappyPath(t *testing.T) {
	gen := &fakeGenerator{response: modelOutput}
	store := &fakeStore{}
	svc := newTestService(gen, store)

	quiz, err := svc.Generate(context.Background(), validConfig(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quiz.ID == "" {
		t.Error("quiz id not assigned")
	}
	if quiz.UserID != 42 {
		t.Errorf("owner = %d, want 42", quiz.UserID)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(quiz.Questions))
	}
	if quiz.Questions[1].CorrectAnswer != 2 {
		t.Errorf("correctAnswer = %d, want 2", quiz.Questions[1].CorrectAnswer)
	}
	if store.created != quiz {
		t.Error("quiz was not persisted")
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Arithmetic") {
		t.Errorf("prompt did not carry the topic: %v", gen.prompts)
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.QuizConfig
	}{
		{"missing topic", models.QuizConfig{NumberOfQuestions: 5}},
		{"zero questions", models.QuizConfig{Topic: "Go"}},
		{"negative questions", models.QuizConfig{Topic: "Go", NumberOfQuestions: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: modelOutput}
			svc := newTestService(gen, &fakeStore{})

			_, err := svc.Generate(context.Background(), tt.cfg, 1)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
			if len(gen.prompts) != 0 {
				t.Error("upstream was called for an invalid config")
			}
		})
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	upstream := &UpstreamError{Status: 503, Msg: "overloaded"}
	svc := newTestService(&fakeGenerator{err: upstream}, &fakeStore{})

	_, err := svc.Generate(context.Background(), validConfig(), 1)
	var got *UpstreamError
	if !errors.As(err, &got) || got.Status != 503 {
		t.Errorf("got %v, want the upstream error", err)
	}
}

func TestGenerateUnparseableResponse(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeGenerator{response: "I'm sorry, I can't produce that."}, store)

	_, err := svc.Generate(context.Background(), validConfig(), 1)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError", err)
	}
	if store.created != nil {
		t.Error("nothing must be persisted on a parse failure")
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	bad := `[{"question": "Q", "options": ["a", "b"], "correctAnswer": 0, "explanation": ""}]`
	store := &fakeStore{}
	svc := newTestService(&fakeGenerator{response: bad}, store)

	_, err := svc.Generate(context.Background(), validConfig(), 1)
	var violation *SchemaViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("got %v, want SchemaViolationError", err)
	}
	if store.created != nil {
		t.Error("nothing must be persisted on a schema violation")
	}
}

func TestGenerateStoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	svc := newTestService(&fakeGenerator{response: modelOutput}, &fakeStore{err: storeErr})

	_, err := svc.Generate(context.Background(), validConfig(), 1)
	if !errors.Is(err, storeErr) {
		t.Errorf("got %v, want the store error", err)
	}
}

func TestGenerateNormalizesConfig(t *testing.T) {
	cfg := validConfig()
	cfg.NegativeMarksValue = 0.5 // negative marking off, value must be zeroed
	cfg.TimeLimit = 30           // timer off, limit must be cleared
	store := &fakeStore{}
	svc := newTestService(&fakeGenerator{response: modelOutput}, store)

	quiz, err := svc.Generate(context.Background(), cfg, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := quiz.Config
	if got.Difficulty != models.DifficultyMedium {
		t.Errorf("difficulty = %q, want default medium", got.Difficulty)
	}
	if got.FeedbackStyle != models.FeedbackEnd {
		t.Errorf("feedbackStyle = %q, want default end", got.FeedbackStyle)
	}
	if got.NegativeMarksValue != 0 {
		t.Errorf("negativeMarksValue = %v, want 0 when negative marking is off", got.NegativeMarksValue)
	}
	if got.TimeLimit != 0 || got.TimerType != "" {
		t.Errorf("timer fields not cleared: %+v", got)
	}
}

func TestExplain(t *testing.T) {
	gen := &fakeGenerator{response: "Because 2+2 equals 4."}
	svc := newTestService(gen, &fakeStore{})

	question := models.QuestionDTO{
		Text:          "What is 2+2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: 1,
		Explanation:   "Basic arithmetic.",
	}

	text, err := svc.Explain(context.Background(), question, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Because 2+2 equals 4." {
		t.Errorf("explanation = %q", text)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "What is 2+2?") {
		t.Errorf("prompt did not carry the question: %v", gen.prompts)
	}
}
