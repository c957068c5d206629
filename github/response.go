package github

import (
	"encoding/json"
	"fmt"

	"github.com/andyle182810/ghclient/httpclient"
)

// processResponse decodes the body when the status matches expected. An empty body
// is handed back as the raw string without decoding.
func processResponse(resp *httpclient.Response, expected int) (any, error) {
	if err := checkStatus(resp, expected); err != nil {
		return nil, err
	}

	if resp.IsEmpty() {
		return resp.Body, nil
	}

	var payload any
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}

	return payload, nil
}

func checkStatus(resp *httpclient.Response, expected int) error {
	if resp.StatusCode != expected {
		return newError(resp)
	}

	return nil
}

func encodeBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}

	return body, nil
}
