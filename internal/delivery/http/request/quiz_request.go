package request

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/pkg/utils"
)

// ErrInvalidJSON means the body is not JSON at all.
var ErrInvalidJSON = errors.New("invalid JSON body")

// QuizRequest is the inbound job description.
type QuizRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// ParseQuizRequest decodes body. It returns ErrInvalidJSON for undecodable
// input and entity.ErrInvalidPayload when the JSON has the wrong shape: not an
// object, a field missing or not a string, or a url that is not absolute http(s).
// Unknown fields are ignored.
func ParseQuizRequest(body []byte) (*QuizRequest, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", entity.ErrInvalidPayload)
	}

	var req QuizRequest
	required := []struct {
		name string
		dst  *string
	}{
		{"email", &req.Email},
		{"secret", &req.Secret},
		{"url", &req.URL},
	}
	for _, f := range required {
		name, dst := f.name, f.dst
		raw, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", entity.ErrInvalidPayload, name)
		}
		if err := json.Unmarshal(raw, dst); err != nil || string(raw) == "null" {
			return nil, fmt.Errorf("%w: field %q must be a string", entity.ErrInvalidPayload, name)
		}
	}

	if !utils.IsHTTPURL(req.URL) {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", entity.ErrInvalidPayload)
	}
	return &req, nil
}

// ChainRequest converts the request for the use case.
func (r *QuizRequest) ChainRequest() entity.ChainRequest {
	return entity.ChainRequest{Email: r.Email, Secret: r.Secret, StartURL: r.URL}
}
