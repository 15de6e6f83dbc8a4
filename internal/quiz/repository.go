package quiz

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizforge/internal/models"
)

// ErrNotFound covers both an absent quiz and, for owner-scoped lookups, a
// quiz owned by someone else.
var ErrNotFound = errors.New("quiz not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuiz persists the quiz with its questions and options in a single
// transaction, so a failure never leaves a partial quiz behind.
func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *Repository) GetQuizByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.position ASC")
		}).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (r *Repository) GetQuizzesByOwner(ctx context.Context, userID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}
