package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizforge/internal/models"
	"quizforge/internal/scoring"
	"quizforge/internal/session"
)

// QuizGetter loads the stored quiz an attempt is scored against.
type QuizGetter interface {
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

// Store is the persistence contract, satisfied by *Repository.
type Store interface {
	CreateAttempt(ctx context.Context, attempt *models.Attempt) error
	GetAttemptByID(ctx context.Context, id string) (*models.Attempt, error)
	ListByOwner(ctx context.Context, ownerID uint, quizID string) ([]models.Attempt, error)
}

// Cache holds recorded attempts for cheap review reads. Both methods are
// best-effort; a miss or failure falls through to the store.
type Cache interface {
	SetAttempt(ctx context.Context, attempt *models.Attempt) error
	GetAttempt(ctx context.Context, id string) (*models.Attempt, error)
}

type Service struct {
	repo    Store
	quizzes QuizGetter
	cache   Cache
	logger  *zap.SugaredLogger
}

func NewService(repo Store, quizzes QuizGetter, cache Cache, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:    repo,
		quizzes: quizzes,
		cache:   cache,
		logger:  logger,
	}
}

// Record derives the score from the stored quiz and persists the attempt.
// Client-submitted scores are never accepted; the answer vector is the only
// client input that matters.
func (s *Service) Record(ctx context.Context, quizID string, ownerID uint, answers models.AnswerVector) (*models.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(quiz.Questions) {
		return nil, ErrInvalidAttempt
	}

	result := scoring.Score(quiz.Questions, quiz.Config, answers)

	attempt := &models.Attempt{
		ID:          uuid.NewString(),
		QuizID:      quiz.ID,
		UserID:      ownerID,
		Answers:     answers,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		CompletedAt: time.Now(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	if err := s.cache.SetAttempt(ctx, attempt); err != nil {
		s.logger.Warnw("failed to cache attempt", "attemptId", attempt.ID, "error", err)
	}

	s.logger.Infow("attempt recorded",
		"attemptId", attempt.ID, "quizId", quiz.ID, "score", result.Score, "maxScore", result.MaxScore)
	return attempt, nil
}

// GetResult returns the full review payload for one attempt. A foreign
// owner gets ErrNotFound, never a forbidden, so existence is not leaked.
func (s *Service) GetResult(ctx context.Context, attemptID string, ownerID uint) (*models.AttemptResultDTO, error) {
	attempt, err := s.cache.GetAttempt(ctx, attemptID)
	if err != nil {
		if attempt, err = s.repo.GetAttemptByID(ctx, attemptID); err != nil {
			return nil, err
		}
	}
	if attempt.UserID != ownerID {
		return nil, ErrNotFound
	}

	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Errorw("quiz missing for recorded attempt", "attemptId", attemptID, "quizId", attempt.QuizID)
		}
		return nil, err
	}

	return &models.AttemptResultDTO{
		ID:          attempt.ID,
		QuizID:      attempt.QuizID,
		Answers:     attempt.Answers,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage,
		CompletedAt: attempt.CompletedAt,
		Quiz:        quiz.ToDTO(),
	}, nil
}

func (s *Service) List(ctx context.Context, ownerID uint, quizID string) ([]models.Attempt, error) {
	return s.repo.ListByOwner(ctx, ownerID, quizID)
}

// SubmitterFor adapts the service into the session engine's Submitter for
// one authenticated owner.
func (s *Service) SubmitterFor(ownerID uint) session.Submitter {
	return submitterAdapter{service: s, ownerID: ownerID}
}

type submitterAdapter struct {
	service *Service
	ownerID uint
}

func (a submitterAdapter) Submit(ctx context.Context, quizID string, answers models.AnswerVector) (session.SubmitResult, error) {
	attempt, err := a.service.Record(ctx, quizID, a.ownerID, answers)
	if err != nil {
		return session.SubmitResult{}, err
	}
	return session.SubmitResult{
		AttemptID:  attempt.ID,
		Score:      attempt.Score,
		MaxScore:   attempt.MaxScore,
		Percentage: attempt.Percentage,
	}, nil
}
