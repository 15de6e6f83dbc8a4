package attempt

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"quizforge/internal/models"
	"quizforge/internal/quiz"
)

type fakeQuizzes struct {
	quiz *models.Quiz
	err  error
}

func (f *fakeQuizzes) GetQuiz(context.Context, string) (*models.Quiz, error) {
	return f.quiz, f.err
}

type fakeStore struct {
	byID    map[string]*models.Attempt
	created []*models.Attempt
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*models.Attempt{}}
}

func (f *fakeStore) CreateAttempt(_ context.Context, attempt *models.Attempt) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, attempt)
	f.byID[attempt.ID] = attempt
	return nil
}

func (f *fakeStore) GetAttemptByID(_ context.Context, id string) (*models.Attempt, error) {
	attempt, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return attempt, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID uint, quizID string) ([]models.Attempt, error) {
	var out []models.Attempt
	for _, a := range f.byID {
		if a.UserID != ownerID {
			continue
		}
		if quizID != "" && a.QuizID != quizID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

// missCache never holds anything; reads fall through to the store.
type missCache struct{}

func (missCache) SetAttempt(context.Context, *models.Attempt) error { return nil }
func (missCache) GetAttempt(context.Context, string) (*models.Attempt, error) {
	return nil, errors.New("cache miss")
}

func storedQuiz() *models.Quiz {
	options := func() []models.Option {
		out := make([]models.Option, 4)
		for j := range out {
			out[j] = models.Option{Position: j, Text: "option"}
		}
		return out
	}
	return &models.Quiz{
		ID:     "quiz-1",
		UserID: 7,
		Config: models.QuizConfig{
			Topic:              "Go",
			NumberOfQuestions:  3,
			MarksPerQuestion:   1,
			NegativeMarking:    true,
			NegativeMarksValue: 0.25,
		},
		Questions: []models.Question{
			{Position: 0, Text: "q0", Options: options(), CorrectAnswer: 0},
			{Position: 1, Text: "q1", Options: options(), CorrectAnswer: 1},
			{Position: 2, Text: "q2", Options: options(), CorrectAnswer: 2},
		},
		CreatedAt: time.Now(),
	}
}

func answerVector(vals ...interface{}) models.AnswerVector {
	out := make(models.AnswerVector, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		n := v.(int)
		out[i] = &n
	}
	return out
}

func newTestService(store *fakeStore, quizzes QuizGetter) *Service {
	return NewService(store, quizzes, missCache{}, zap.NewNop().Sugar())
}

func TestRecordDerivesScore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQuizzes{quiz: storedQuiz()})

	// Correct, wrong, unanswered: 1 - 0.25 + 0 = 0.75 of 3.
	attempt, err := svc.Record(context.Background(), "quiz-1", 7, answerVector(0, 0, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attempt.Score != 0.75 {
		t.Errorf("score = %v, want 0.75", attempt.Score)
	}
	if attempt.MaxScore != 3 {
		t.Errorf("maxScore = %v, want 3", attempt.MaxScore)
	}
	if attempt.Percentage != 25 {
		t.Errorf("percentage = %v, want 25", attempt.Percentage)
	}
	if attempt.ID == "" || attempt.CompletedAt.IsZero() {
		t.Errorf("attempt not fully populated: %+v", attempt)
	}
	if len(store.created) != 1 {
		t.Fatalf("persisted %d attempts, want 1", len(store.created))
	}
}

func TestRecordQuizNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeQuizzes{err: quiz.ErrNotFound})

	_, err := svc.Record(context.Background(), "missing", 7, answerVector(0))
	if !errors.Is(err, quiz.ErrNotFound) {
		t.Errorf("got %v, want quiz.ErrNotFound", err)
	}
}

func TestRecordAnswerCountMismatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQuizzes{quiz: storedQuiz()})

	_, err := svc.Record(context.Background(), "quiz-1", 7, answerVector(0, 1))
	if !errors.Is(err, ErrInvalidAttempt) {
		t.Errorf("got %v, want ErrInvalidAttempt", err)
	}
	if len(store.created) != 0 {
		t.Error("nothing must be persisted for a mismatched vector")
	}
}

func TestGetResultOwnerMismatchLooksAbsent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQuizzes{quiz: storedQuiz()})

	attempt, err := svc.Record(context.Background(), "quiz-1", 7, answerVector(0, 1, 2))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetResult(context.Background(), attempt.ID, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner got %v, want ErrNotFound", err)
	}
}

func TestGetResultIncludesQuiz(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQuizzes{quiz: storedQuiz()})

	attempt, err := svc.Record(context.Background(), "quiz-1", 7, answerVector(0, 1, 2))
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.GetResult(context.Background(), attempt.ID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 3 || result.Percentage != 100 {
		t.Errorf("result = %+v", result)
	}
	if result.Quiz.ID != "quiz-1" || len(result.Quiz.Questions) != 3 {
		t.Errorf("quiz payload = %+v", result.Quiz)
	}
	if len(result.Answers) != 3 {
		t.Errorf("answers = %v", result.Answers)
	}
}

func TestGetResultMissingAttempt(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeQuizzes{quiz: storedQuiz()})

	if _, err := svc.GetResult(context.Background(), "nope", 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSubmitterForRecordsUnderOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQuizzes{quiz: storedQuiz()})

	submitter := svc.SubmitterFor(7)
	result, err := submitter.Submit(context.Background(), "quiz-1", answerVector(0, 1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AttemptID == "" || result.Score != 3 {
		t.Errorf("result = %+v", result)
	}
	if store.created[0].UserID != 7 {
		t.Errorf("owner = %d, want 7", store.created[0].UserID)
	}
}
