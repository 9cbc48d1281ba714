package repository

import (
	"context"

	"github.com/user/quiz-solver/internal/entity"
)

// Submitter posts an answer to a grading endpoint.
type Submitter interface {
	// Submit returns the decoded JSON object sent back by the grader.
	Submit(ctx context.Context, submitURL string, payload entity.SubmitPayload) (map[string]any, error)
}
