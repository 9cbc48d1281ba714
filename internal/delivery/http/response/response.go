package response

import "github.com/user/quiz-solver/internal/entity"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SolveResponse is returned when a chain terminates normally.
type SolveResponse struct {
	Status string             `json:"status"`
	Steps  []entity.ChainStep `json:"steps"`
}

// ErrorResponse carries a human-readable failure message.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewSolveResponse(result *entity.ChainResult) SolveResponse {
	steps := result.Steps
	if steps == nil {
		steps = []entity.ChainStep{}
	}
	return SolveResponse{Status: StatusOK, Steps: steps}
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Message: message}
}
