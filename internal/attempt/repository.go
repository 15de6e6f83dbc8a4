package attempt

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizforge/internal/models"
)

// ErrNotFound covers an absent attempt and an attempt owned by another
// user: owner mismatch is never distinguishable from absence.
var ErrNotFound = errors.New("attempt not found")

// ErrInvalidAttempt means the submitted answer vector does not match the
// quiz's question count.
var ErrInvalidAttempt = errors.New("number of answers does not match number of questions")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateAttempt is a single atomic write; attempts are never updated after.
func (r *Repository) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *Repository) GetAttemptByID(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *Repository) ListByOwner(ctx context.Context, userID uint, quizID string) ([]models.Attempt, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}

	var attempts []models.Attempt
	if err := query.Order("completed_at DESC").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
