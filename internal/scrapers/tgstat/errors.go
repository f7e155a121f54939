package tgstat

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a listing item that was skipped. It is only ever reported, never
// returned from Run.
var ErrMalformedRecord = errors.New("malformed record")

var (
	errMissingItems     = errors.New("response has no items list")
	errNoHost           = errors.New("missing host")
	errUnexpectedStatus = errors.New("unexpected status")
)

// FetchError is a failure to fetch or decode a single page. It aborts the paging mode that
// was running when it happened.
type FetchError struct {
	URL  string
	Page int
	// StatusCode is 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d (%s): status %d: %v", e.Page, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
