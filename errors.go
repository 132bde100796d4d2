package godigest

import "errors"

var (
	// ErrInputRejected is returned for unsupported media types or otherwise
	// invalid request input. Reported before the pipeline starts.
	ErrInputRejected = errors.New("godigest: input rejected")

	// ErrExtractionEmpty is returned when text extraction, including any
	// OCR or transcription fallback, produced nothing usable.
	ErrExtractionEmpty = errors.New("godigest: no text could be extracted")

	// ErrService is returned for non-retryable generation-service failures.
	// Rate-limit retry exhaustion is promoted to this error.
	ErrService = errors.New("godigest: generation service failure")

	// ErrMalformed is returned when a service answered but its response
	// could not be parsed into the expected shape.
	ErrMalformed = errors.New("godigest: malformed service response")
)
