package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quizforge/internal/auth"
	"quizforge/internal/generation"
	"quizforge/internal/models"
)

type Handler struct {
	service   *Service
	generator *generation.Service
	logger    *zap.SugaredLogger
}

func NewHandler(service *Service, generator *generation.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service:   service,
		generator: generator,
		logger:    logger,
	}
}

// GenerateQuiz runs the generation pipeline for the authenticated user and
// returns the stored quiz id. Any pipeline failure maps to a retryable
// user-facing error; no partial quiz is ever persisted.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var cfg models.QuizConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quiz, err := h.generator.Generate(r.Context(), cfg, userID)
	if err != nil {
		status, msg := generationErrorStatus(err)
		h.logger.Errorw("quiz generation failed", "userId", userID, "error", err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"quizId":  quiz.ID,
	})
}

// GetQuiz serves the take-a-quiz payload. Public by id; the owner is never
// exposed.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	quiz, err := h.service.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Quiz not found.")
			return
		}
		h.logger.Errorw("failed to fetch quiz", "quizId", quizID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error while fetching quiz.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"quiz":    quiz.ToDTO(),
	})
}

func (h *Handler) GetMyQuizzes(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list quizzes", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error while fetching quizzes.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"quizzes": quizzes,
	})
}

type explainRequest struct {
	Question   models.QuestionDTO `json:"question"`
	UserAnswer *int               `json:"userAnswer"`
}

// Explain asks the generation service for a tailored explanation of one
// answered question.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question.Text == "" || req.UserAnswer == nil {
		writeError(w, http.StatusBadRequest, "Question object and user answer are required")
		return
	}

	explanation, err := h.generator.Explain(r.Context(), req.Question, *req.UserAnswer)
	if err != nil {
		h.logger.Errorw("explanation failed", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to generate explanation. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

func generationErrorStatus(err error) (int, string) {
	var upstream *generation.UpstreamError
	var parse *generation.ParseError
	var schema *generation.SchemaViolationError
	switch {
	case errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusBadRequest, "Missing required fields: topic and numberOfQuestions"
	case errors.As(err, &upstream), errors.As(err, &parse), errors.As(err, &schema):
		return http.StatusBadGateway, "Failed to generate quiz. Please try again."
	default:
		return http.StatusInternalServerError, "Failed to generate quiz. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
