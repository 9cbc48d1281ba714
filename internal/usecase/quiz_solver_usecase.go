package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/classifier"
	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/extractor"
	"github.com/user/quiz-solver/internal/repository"
	"github.com/user/quiz-solver/pkg/metrics"
	"github.com/user/quiz-solver/pkg/utils"
)

const (
	defaultChainDeadline = 180 * time.Second
	// The guard key outlives the deadline by this much, in case the last step overruns it.
	guardGrace = time.Minute
)

// QuizSolver runs one quiz chain per call.
type QuizSolver interface {
	Solve(ctx context.Context, req entity.ChainRequest) (*entity.ChainResult, error)
}

// Option customizes a QuizSolver.
type Option func(*quizSolverUseCase)

// WithDeadline sets the time budget of a chain.
func WithDeadline(d time.Duration) Option {
	return func(uc *quizSolverUseCase) {
		if d > 0 {
			uc.deadline = d
		}
	}
}

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(uc *quizSolverUseCase) { uc.now = now }
}

// WithGuard refuses to start a chain that is already running elsewhere.
func WithGuard(guard repository.ChainGuard) Option {
	return func(uc *quizSolverUseCase) { uc.guard = guard }
}

type quizSolverUseCase struct {
	renderer   repository.Renderer
	submitter  repository.Submitter
	files      classifier.FileResolver
	classifier *classifier.Classifier
	guard      repository.ChainGuard
	metrics    *metrics.Metrics
	logger     *zap.Logger
	deadline   time.Duration
	now        func() time.Time
}

// NewQuizSolver creates a new instance of the quiz solver use case.
func NewQuizSolver(
	renderer repository.Renderer,
	submitter repository.Submitter,
	files classifier.FileResolver,
	cls *classifier.Classifier,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) QuizSolver {
	uc := &quizSolverUseCase{
		renderer:   renderer,
		submitter:  submitter,
		files:      files,
		classifier: cls,
		metrics:    m,
		logger:     logger.With(zap.String("component", "quiz_solver")),
		deadline:   defaultChainDeadline,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// chainState is owned by a single Solve call.
type chainState struct {
	currentURL string
	deadline   time.Time
	steps      []entity.ChainStep
}

// Solve follows the chain from req.StartURL until the grader stops handing out
// continuation links. Any failure aborts the chain and the collected steps are
// dropped.
func (uc *quizSolverUseCase) Solve(ctx context.Context, req entity.ChainRequest) (*entity.ChainResult, error) {
	startTime := time.Now()
	logger := uc.logger.With(zap.String("email", req.Email), zap.String("start_url", req.StartURL))

	release, err := uc.acquireGuard(ctx, req, logger)
	if err != nil {
		uc.observeChain(startTime, err)
		return nil, err
	}
	defer release()

	uc.metrics.ActiveChains.Inc()
	defer uc.metrics.ActiveChains.Dec()

	state := &chainState{currentURL: req.StartURL, deadline: uc.now().Add(uc.deadline)}
	result, err := uc.run(ctx, req, state, logger)
	uc.observeChain(startTime, err)
	if err != nil {
		logger.Error("Quiz chain failed",
			zap.Error(err),
			zap.String("error_kind", ErrorKind(err)),
			zap.Int("completed_steps", len(state.steps)),
		)
		return nil, err
	}

	logger.Info("Quiz chain completed", zap.Int("steps", len(result.Steps)), zap.Duration("duration", time.Since(startTime)))
	return result, nil
}

func (uc *quizSolverUseCase) run(ctx context.Context, req entity.ChainRequest, state *chainState, logger *zap.Logger) (*entity.ChainResult, error) {
	session, err := uc.renderer.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open render session: %w", entity.ErrRenderFailure, err)
	}
	defer session.Close()

	for {
		if uc.now().After(state.deadline) {
			return nil, &StepError{QuizURL: state.currentURL, Stage: StageFetching, Err: entity.ErrChainTimeout}
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("quiz chain interrupted: %w", err)
		}

		step, err := uc.solveStep(ctx, session, req, state.currentURL, logger)
		if err != nil {
			return nil, err
		}
		state.steps = append(state.steps, *step)

		next, ok := entity.NextURL(step.SubmitResponse)
		if !ok {
			return &entity.ChainResult{Steps: state.steps}, nil
		}
		state.currentURL = next
	}
}

// solveStep renders, extracts, classifies and submits a single quiz page.
func (uc *quizSolverUseCase) solveStep(
	ctx context.Context,
	session repository.RenderSession,
	req entity.ChainRequest,
	quizURL string,
	logger *zap.Logger,
) (*entity.ChainStep, error) {
	fail := func(stage Stage, err error) (*entity.ChainStep, error) {
		return nil, &StepError{QuizURL: quizURL, Stage: stage, Err: err}
	}

	renderStart := time.Now()
	page, err := session.Render(ctx, quizURL)
	uc.metrics.RenderDuration.Observe(time.Since(renderStart).Seconds())
	if err != nil {
		return fail(StageFetching, fmt.Errorf("%w: %w", entity.ErrRenderFailure, err))
	}

	content, err := extractor.Extract(page.SourceURL, page.HTML)
	if err != nil {
		return fail(StageExtracting, fmt.Errorf("failed to parse quiz page: %w", err))
	}
	if !content.HasSubmitURL() {
		return fail(StageExtracting, entity.ErrNoSubmitURL)
	}

	answer, pattern, err := uc.classifier.Classify(ctx, content, uc.files)
	if err != nil {
		return fail(StageClassifying, err)
	}
	uc.metrics.AnswerPatternsTotal.WithLabelValues(string(pattern)).Inc()

	payload := entity.SubmitPayload{
		Email:  req.Email,
		Secret: req.Secret,
		URL:    quizURL,
		Answer: answer,
	}
	submitStart := time.Now()
	resp, err := uc.submitter.Submit(ctx, content.SubmitURL, payload)
	uc.metrics.SubmitDuration.Observe(time.Since(submitStart).Seconds())
	if err != nil {
		return fail(StageSubmitting, fmt.Errorf("%w: %w", entity.ErrSubmitFailure, err))
	}
	uc.metrics.ChainStepsTotal.Inc()

	next, _ := entity.NextURL(resp)
	logger.Info("Quiz answer submitted",
		zap.String("quiz_url", quizURL),
		zap.String("submit_url", content.SubmitURL),
		zap.String("pattern", string(pattern)),
		zap.Stringer("answer", answer),
		zap.Any("correct", resp["correct"]),
		zap.String("next_url", next),
	)

	return &entity.ChainStep{QuizURL: quizURL, Answer: answer, SubmitResponse: resp}, nil
}

// acquireGuard claims the chain key. Guard outages are logged and ignored.
func (uc *quizSolverUseCase) acquireGuard(ctx context.Context, req entity.ChainRequest, logger *zap.Logger) (func(), error) {
	if uc.guard == nil {
		return func() {}, nil
	}

	key := utils.HashKey(req.Email, req.StartURL)
	acquired, err := uc.guard.Acquire(ctx, key, uc.deadline+guardGrace)
	if err != nil {
		logger.Warn("Chain guard unavailable, continuing without it", zap.Error(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, entity.ErrChainInProgress
	}

	return func() {
		if err := uc.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.Warn("Failed to release chain guard", zap.Error(err))
		}
	}, nil
}

func (uc *quizSolverUseCase) observeChain(start time.Time, err error) {
	uc.metrics.ChainDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.ChainsTotal.WithLabelValues("failed", ErrorKind(err)).Inc()
		return
	}
	uc.metrics.ChainsTotal.WithLabelValues("completed", "").Inc()
}

// ErrorKind names the error kind of err for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entity.ErrChainTimeout):
		return "chain_timeout"
	case errors.Is(err, entity.ErrChainInProgress):
		return "chain_in_progress"
	case errors.Is(err, entity.ErrRenderFailure):
		return "render_failure"
	case errors.Is(err, entity.ErrNoSubmitURL):
		return "no_submit_url"
	case errors.Is(err, entity.ErrUnsolvableQuestion):
		return "unsolvable_question"
	case errors.Is(err, entity.ErrSubmitFailure):
		return "submit_failure"
	default:
		return "internal_error"
	}
}
