package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"quizforge/internal/models"
)

const (
	quizTTL    = 24 * time.Hour
	attemptTTL = 24 * time.Hour
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// The cache stores its own envelopes rather than the models' API JSON:
// the models hide the owner id and option rows from responses, and the
// cache needs both to reconstruct a full quiz.

type cachedQuestion struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type cachedQuiz struct {
	ID        string            `json:"id"`
	OwnerID   uint              `json:"ownerId"`
	Config    models.QuizConfig `json:"config"`
	Questions []cachedQuestion  `json:"questions"`
	CreatedAt time.Time         `json:"createdAt"`
}

type cachedAttempt struct {
	Attempt *models.Attempt `json:"attempt"`
	OwnerID uint            `json:"ownerId"`
}

func (c *RedisCache) SetQuiz(ctx context.Context, quiz *models.Quiz) error {
	entry := cachedQuiz{
		ID:        quiz.ID,
		OwnerID:   quiz.UserID,
		Config:    quiz.Config,
		Questions: make([]cachedQuestion, len(quiz.Questions)),
		CreatedAt: quiz.CreatedAt,
	}
	for i, q := range quiz.Questions {
		entry.Questions[i] = cachedQuestion{
			Text:          q.Text,
			Options:       q.OptionTexts(),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "quiz:"+quiz.ID, data, quizTTL).Err()
}

func (c *RedisCache) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	data, err := c.client.Get(ctx, "quiz:"+id).Bytes()
	if err != nil {
		return nil, err
	}

	var entry cachedQuiz
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:        entry.ID,
		UserID:    entry.OwnerID,
		Config:    entry.Config,
		Questions: make([]models.Question, len(entry.Questions)),
		CreatedAt: entry.CreatedAt,
	}
	for i, q := range entry.Questions {
		options := make([]models.Option, len(q.Options))
		for j, text := range q.Options {
			options[j] = models.Option{Position: j, Text: text}
		}
		quiz.Questions[i] = models.Question{
			QuizID:        entry.ID,
			Position:      i,
			Text:          q.Text,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	return quiz, nil
}

// SetAttempt caches a recorded attempt so repeated review reads stay cheap
// and idempotent.
func (c *RedisCache) SetAttempt(ctx context.Context, attempt *models.Attempt) error {
	data, err := json.Marshal(cachedAttempt{Attempt: attempt, OwnerID: attempt.UserID})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "attempt:"+attempt.ID, data, attemptTTL).Err()
}

func (c *RedisCache) GetAttempt(ctx context.Context, id string) (*models.Attempt, error) {
	data, err := c.client.Get(ctx, "attempt:"+id).Bytes()
	if err != nil {
		return nil, err
	}

	var entry cachedAttempt
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	entry.Attempt.UserID = entry.OwnerID
	return entry.Attempt, nil
}
