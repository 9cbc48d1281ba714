package repository

import (
	"context"

	"github.com/user/quiz-solver/internal/entity"
)

// Renderer hands out rendering sessions. A session is owned by exactly one
// chain, so concurrent chains never share in-flight page state.
type Renderer interface {
	// NewSession acquires a session. It may block until capacity is available.
	NewSession(ctx context.Context) (RenderSession, error)
}

// RenderSession renders pages for a single chain.
type RenderSession interface {
	// Render loads url and returns the HTML once network activity has settled.
	Render(ctx context.Context, url string) (*entity.QuizPage, error)
	// Close releases the session. It is safe to call more than once.
	Close()
}
