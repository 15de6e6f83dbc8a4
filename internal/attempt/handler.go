package attempt

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quizforge/internal/auth"
	"quizforge/internal/models"
	"quizforge/internal/quiz"
)

type Handler struct {
	service *Service
	logger  *zap.SugaredLogger
}

func NewHandler(service *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: service, logger: logger}
}

type submitRequest struct {
	QuizID  string              `json:"quizId"`
	Answers models.AnswerVector `json:"answers"`
}

// SubmitAttempt records a completed quiz pass for the authenticated user.
// The response carries the server-derived score only.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.Answers == nil {
		writeError(w, http.StatusBadRequest, "Invalid data provided for attempt.")
		return
	}

	attempt, err := h.service.Record(r.Context(), req.QuizID, userID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrNotFound):
			writeError(w, http.StatusNotFound, "Original quiz not found.")
		case errors.Is(err, ErrInvalidAttempt):
			writeError(w, http.StatusBadRequest, "Number of answers does not match number of questions.")
		default:
			h.logger.Errorw("failed to record attempt", "quizId", req.QuizID, "userId", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Server error while saving attempt.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"attemptId":  attempt.ID,
		"score":      attempt.Score,
		"maxScore":   attempt.MaxScore,
		"percentage": attempt.Percentage,
	})
}

// GetAttempt serves the full review payload. Attempts belonging to another
// user look exactly like missing ones.
func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	attemptID := mux.Vars(r)["attemptId"]

	result, err := h.service.GetResult(r.Context(), attemptID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, quiz.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Quiz attempt not found.")
			return
		}
		h.logger.Errorw("failed to fetch attempt", "attemptId", attemptID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error while fetching attempt details.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	quizID := r.URL.Query().Get("quizId")

	attempts, err := h.service.List(r.Context(), userID, quizID)
	if err != nil {
		h.logger.Errorw("failed to list attempts", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error while fetching attempts.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"attempts": attempts,
	})
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
