package quiz

import (
	"context"

	"go.uber.org/zap"

	"quizforge/internal/models"
)

// Store is the persistence contract, satisfied by *Repository.
type Store interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuizByID(ctx context.Context, id string) (*models.Quiz, error)
	GetQuizzesByOwner(ctx context.Context, userID uint) ([]models.Quiz, error)
}

// Cache holds full quizzes keyed by id. Best-effort on both sides; a miss
// or failure falls through to the store.
type Cache interface {
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

type Service struct {
	repo   Store
	cache  Cache
	logger *zap.SugaredLogger
}

func NewService(repo Store, cache Cache, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return err
	}
	if err := s.cache.SetQuiz(ctx, quiz); err != nil {
		s.logger.Warnw("failed to cache quiz", "quizId", quiz.ID, "error", err)
	}
	return nil
}

// GetQuiz reads through the cache; quizzes are immutable so a cached copy
// never goes stale.
func (s *Service) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	if quiz, err := s.cache.GetQuiz(ctx, id); err == nil {
		return quiz, nil
	}

	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetQuiz(ctx, quiz); err != nil {
		s.logger.Warnw("failed to cache quiz", "quizId", quiz.ID, "error", err)
	}
	return quiz, nil
}

func (s *Service) ListQuizzes(ctx context.Context, userID uint) ([]models.QuizSummaryDTO, error) {
	quizzes, err := s.repo.GetQuizzesByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.QuizSummaryDTO, len(quizzes))
	for i, quiz := range quizzes {
		summaries[i] = quiz.ToSummaryDTO()
	}
	return summaries, nil
}
