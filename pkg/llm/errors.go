package llm

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteStream = errors.New("stream ended before completion signal")
	ErrMalformedEvent   = errors.New("malformed stream event")
	ErrPromptTooLarge   = errors.New("prompt does not fit the token window")
)

// UpstreamError is a non-success reply from the model provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}
