package httpclient

import "errors"

var (
	ErrRequestFailed    = errors.New("httpclient: request failed")
	ErrReadResponse     = errors.New("httpclient: failed to read response")
	ErrCreateRequest    = errors.New("httpclient: failed to create request")
	ErrAuthFailed       = errors.New("httpclient: authentication failed")
	ErrRateLimited      = errors.New("httpclient: rate limiter wait failed")
	ErrResponseTooLarge = errors.New("httpclient: response body too large")
)
