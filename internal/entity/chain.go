package entity

// ChainRequest is a validated inbound job.
type ChainRequest struct {
	Email    string
	Secret   string
	StartURL string
}

// SubmitPayload is the body posted to a quiz submission endpoint.
type SubmitPayload struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Answer Answer `json:"answer"`
}

// ChainStep records one solved quiz page.
type ChainStep struct {
	QuizURL        string         `json:"quiz_url"`
	Answer         Answer         `json:"answer"`
	SubmitResponse map[string]any `json:"submit_response"`
}

// ChainResult is the ordered log returned when a chain terminates normally.
type ChainResult struct {
	Steps []ChainStep
}

// NextURL returns the continuation link carried by a grading response.
// Only a non-empty string counts; the "correct" flag is ignored.
func NextURL(resp map[string]any) (string, bool) {
	next, ok := resp["url"].(string)
	if !ok || next == "" {
		return "", false
	}
	return next, true
}
