package content

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed matches every FetchError
	ErrFetchFailed = errors.New("fetch failed")

	// ErrNotFound is returned when the API has no post with the requested id
	ErrNotFound = errors.New("post not found")
)

// FetchError is the single failure kind of the content API: a transport
// error, a non-success status or a body that is not the expected JSON.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
