package llm

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// ErrMalformed is returned when a service replied with success but the
// response body could not be decoded into the expected shape.
var ErrMalformed = errors.New("llm: malformed response")

// StatusError is a non-retryable API failure (any non-success status other
// than 429, or a missing result in an otherwise well-formed response).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: api error %d: %s", e.Code, snippet(e.Body))
}

// RateLimitError signals HTTP 429. RetryAfter carries the server-suggested
// wait, parsed from the error body or the Retry-After header, with a 20s
// default when the server gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm: rate limited, retry after %s: %s", e.RetryAfter, snippet(e.Body))
}

// defaultRetryAfter is used when a 429 carries no usable wait hint.
const defaultRetryAfter = 20 * time.Second

// retryDelayPattern matches a server-suggested wait embedded in an error
// sentence, e.g. "Please retry in 28.5s." or "try again in 7 seconds".
var retryDelayPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*s(?:ec(?:ond)?s?)?\b`)

// newRateLimitError builds a RateLimitError from a 429 response.
func newRateLimitError(header http.Header, body string) *RateLimitError {
	return &RateLimitError{
		RetryAfter: parseRetryDelay(header.Get("Retry-After"), body),
		Body:       body,
	}
}

// parseRetryDelay extracts the suggested wait from the Retry-After header
// (whole seconds) or from a delay sentence in the body, falling back to
// defaultRetryAfter.
func parseRetryDelay(retryAfter, body string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if m := retryDelayPattern.FindStringSubmatch(body); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultRetryAfter
}

// snippet bounds error bodies embedded in messages so logs stay readable.
func snippet(s string) string {
	const max = 300
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
