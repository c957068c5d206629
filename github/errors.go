package github

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andyle182810/ghclient/httpclient"
)

const fallbackErrorMessage = "Invalid response received from GitHub."

var (
	ErrUnexpectedResponse = errors.New("github: unexpected response")
	ErrDecodeResponse     = errors.New("github: failed to decode response")
	ErrEncodeBody         = errors.New("github: failed to encode request body")
	ErrInvalidOption      = errors.New("github: invalid option")
)

// Error is returned whenever GitHub answers with a status other than the one the
// operation documents as success.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("github: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Is(target error) bool {
	return errors.Is(target, ErrUnexpectedResponse)
}

func (e *Error) Unwrap() error {
	return ErrUnexpectedResponse
}

func newError(resp *httpclient.Response) *Error {
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
		RequestID:  resp.RequestID,
	}
}

func errorMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Message == "" {
		return fallbackErrorMessage
	}

	return payload.Message
}

// AsError reports whether err carries a *Error.
func AsError(err error) (*Error, bool) {
	var ghErr *Error
	if errors.As(err, &ghErr) {
		return ghErr, true
	}

	return nil, false
}
