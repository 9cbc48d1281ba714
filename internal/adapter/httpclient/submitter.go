package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/repository"
)

// DefaultSubmitTimeout bounds a single answer submission.
const DefaultSubmitTimeout = 50 * time.Second

// Submitter posts answers as JSON and decodes the grader's verdict.
type Submitter struct {
	client *resty.Client
	logger *zap.Logger
}

var _ repository.Submitter = (*Submitter)(nil)

// NewSubmitter creates a submitter. A zero timeout means DefaultSubmitTimeout.
func NewSubmitter(timeout time.Duration, userAgent string, logger *zap.Logger) *Submitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	logger = logger.With(zap.String("component", "submitter"))
	return &Submitter{client: newClient(timeout, userAgent, logger), logger: logger}
}

// Submit posts payload to submitURL. Any response whose body is a JSON object
// is a verdict, whatever its status code; graders may mark a wrong answer with
// a 4xx and still hand out the next quiz. Other bodies are errors.
func (s *Submitter) Submit(ctx context.Context, submitURL string, payload entity.SubmitPayload) (map[string]any, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(payload).
		Post(submitURL)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", submitURL, err)
	}
	var verdict map[string]any
	if err := json.Unmarshal(res.Body(), &verdict); err != nil || verdict == nil {
		return nil, fmt.Errorf("post %s: status %d: expected a JSON object, got %s", submitURL, res.StatusCode(), truncate(res.Body()))
	}
	if res.IsError() {
		s.logger.Warn("Grader answered with an error status",
			zap.String("submit_url", submitURL),
			zap.Int("status", res.StatusCode()),
		)
	}
	return verdict, nil
}
