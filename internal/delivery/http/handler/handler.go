package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/delivery/http/request"
	"github.com/user/quiz-solver/internal/delivery/http/response"
	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/usecase"
)

// maxBodyBytes bounds the inbound job body.
const maxBodyBytes = 1 << 20

type Handler struct {
	solver usecase.QuizSolver
	secret []byte
	logger *zap.Logger
}

func NewHandler(solver usecase.QuizSolver, secret string, logger *zap.Logger) *Handler {
	return &Handler{
		solver: solver,
		secret: []byte(secret),
		logger: logger.With(zap.String("component", "http_handler")),
	}
}

// HandleSolve validates the job, checks the secret and runs the chain to completion.
func (h *Handler) HandleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeJSONError(w, "Invalid JSON body.", http.StatusBadRequest)
		return
	}

	req, err := request.ParseQuizRequest(body)
	if err != nil {
		if errors.Is(err, request.ErrInvalidJSON) {
			h.writeJSONError(w, "Invalid JSON body.", http.StatusBadRequest)
			return
		}
		h.logger.Debug("Rejected quiz payload", zap.Error(err))
		h.writeJSONError(w, "Invalid payload format.", http.StatusBadRequest)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), h.secret) != 1 {
		h.logger.Warn("Rejected quiz request with invalid secret", zap.String("email", req.Email))
		h.writeJSONError(w, "Invalid secret.", http.StatusForbidden)
		return
	}

	result, err := h.solver.Solve(r.Context(), req.ChainRequest())
	if err != nil {
		status, message := errorResponse(err)
		if usecase.ErrorKind(err) == "internal_error" {
			h.logger.Error("Quiz chain failed unexpectedly", zap.String("url", req.URL), zap.Error(err))
		}
		h.writeJSONError(w, message, status)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewSolveResponse(result))
}

// errorResponse maps a chain error to its status code and client message.
func errorResponse(err error) (int, string) {
	quizURL := ""
	var stepErr *usecase.StepError
	if errors.As(err, &stepErr) {
		quizURL = stepErr.QuizURL
	}

	switch {
	case errors.Is(err, entity.ErrChainInProgress):
		return http.StatusConflict, "Quiz chain already in progress."
	case errors.Is(err, entity.ErrChainTimeout):
		return http.StatusInternalServerError, "Timeout: Quiz solving exceeded the deadline."
	case errors.Is(err, entity.ErrNoSubmitURL):
		return http.StatusInternalServerError, "Quiz solver could not detect submit URL."
	case errors.Is(err, entity.ErrSubmitFailure):
		return http.StatusInternalServerError, fmt.Sprintf("Submit failed for %s", quizURL)
	case errors.Is(err, entity.ErrRenderFailure):
		if quizURL == "" {
			return http.StatusInternalServerError, "Failed to render quiz page."
		}
		return http.StatusInternalServerError, fmt.Sprintf("Failed to render quiz page %s", quizURL)
	case errors.Is(err, entity.ErrUnsolvableQuestion):
		return http.StatusInternalServerError, fmt.Sprintf("Quiz solver could not answer the question at %s", quizURL)
	default:
		return http.StatusInternalServerError, "Internal server error while solving quiz."
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: response.StatusOK})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.NewErrorResponse(message))
}
