package entity

import "errors"

// Error kinds surfaced by the solver. Components wrap them with context and
// callers match them with errors.Is; anything else is an internal error.
var (
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrForbidden           = errors.New("invalid secret")
	ErrRenderFailure       = errors.New("page render failed")
	ErrNoSubmitURL         = errors.New("could not detect submit URL")
	ErrUnsolvableQuestion  = errors.New("question could not be solved")
	ErrMissingDownloadLink = errors.New("no download link found for file-based question")
	ErrUnprocessableFile   = errors.New("could not process downloaded file")
	ErrSubmitFailure       = errors.New("answer submission failed")
	ErrChainTimeout        = errors.New("quiz solving exceeded the deadline")
	ErrChainInProgress     = errors.New("quiz chain already in progress")
)
