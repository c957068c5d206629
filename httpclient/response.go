package httpclient

import (
	"net/http"
	"strings"
)

// Response is a completed round trip. Body holds the raw payload, usually JSON.
type Response struct {
	StatusCode int
	Body       string
	Header     http.Header
	RequestID  string
}

// IsEmpty reports whether the body carries no payload.
func (r *Response) IsEmpty() bool {
	return strings.TrimSpace(r.Body) == ""
}
