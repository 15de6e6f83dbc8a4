package generation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizforge/internal/models"
)

// TextGenerator is the external generation service contract. It is treated
// as unreliable and slow; the pipeline makes exactly one call per operation.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// QuizStore persists a fully validated quiz in a single atomic write.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
}

type Service struct {
	generator TextGenerator
	store     QuizStore
	logger    *zap.SugaredLogger
}

func NewService(generator TextGenerator, store QuizStore, logger *zap.SugaredLogger) *Service {
	return &Service{
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// Generate runs the full pipeline: validate config, prompt the model,
// sanitize and parse the response, validate the question set, persist.
// Any stage failure surfaces as a typed error and nothing is persisted;
// the caller retries by regenerating from scratch.
func (s *Service) Generate(ctx context.Context, cfg models.QuizConfig, ownerID uint) (*models.Quiz, error) {
	if cfg.Topic == "" || cfg.NumberOfQuestions <= 0 {
		return nil, ErrInvalidConfig
	}

	cfg = normalizeConfig(cfg)
	if cfg.NegativeMarking && cfg.NegativeMarksValue > cfg.MarksPerQuestion {
		s.logger.Warnw("negative marks exceed marks per question; a wrong answer outweighs a correct one",
			"negativeMarksValue", cfg.NegativeMarksValue,
			"marksPerQuestion", cfg.MarksPerQuestion)
	}

	prompt := BuildQuizPrompt(cfg)
	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Errorw("generation call failed", "topic", cfg.Topic, "error", err)
		return nil, err
	}

	cleaned := Sanitize(raw)

	var parsed interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		s.logger.Errorw("model response failed to parse", "error", err)
		return nil, &ParseError{Err: err}
	}

	questions, err := ValidateQuestionSet(parsed)
	if err != nil {
		s.logger.Errorw("model response failed validation", "error", err)
		return nil, err
	}

	quiz := &models.Quiz{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Config:    cfg,
		Questions: questions,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	s.logger.Infow("quiz generated", "quizId", quiz.ID, "topic", cfg.Topic, "questions", len(questions))
	return quiz, nil
}

// Explain asks the model for a tailored explanation of one answered question.
func (s *Service) Explain(ctx context.Context, question models.QuestionDTO, userAnswer int) (string, error) {
	prompt := BuildExplanationPrompt(question, userAnswer)
	text, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Errorw("explanation call failed", "error", err)
		return "", err
	}
	return text, nil
}

func normalizeConfig(cfg models.QuizConfig) models.QuizConfig {
	if cfg.Difficulty == "" {
		cfg.Difficulty = models.DifficultyMedium
	}
	if cfg.FeedbackStyle == "" {
		cfg.FeedbackStyle = models.FeedbackEnd
	}
	if !cfg.NegativeMarking {
		cfg.NegativeMarksValue = 0
	}
	if !cfg.TimerEnabled {
		cfg.TimerType = ""
		cfg.TimeLimit = 0
	}
	return cfg
}
