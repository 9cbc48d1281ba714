package usecase

import "fmt"

// Stage is the chain state in which a step failed.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageSubmitting  Stage = "submitting"
)

// StepError ties a chain failure to the quiz page being solved.
type StepError struct {
	QuizURL string
	Stage   Stage
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.QuizURL, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
