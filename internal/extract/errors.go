package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction indicates a source payload could not be turned into
	// text (malformed PDF, oversized input, unparsable HTML). Callers treat
	// it as a validation failure: nothing is persisted.
	ErrExtraction = errors.New("extraction failed")

	// ErrFetch indicates a URL source could not be fetched. FetchError
	// wraps it with the observed status code.
	ErrFetch = errors.New("fetch failed")
)

// FetchError reports a failed page fetch. StatusCode is 0 for transport
// errors that never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s: %v", e.URL, e.Err)
}

// Unwrap lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Unwrap() error { return ErrFetch }
