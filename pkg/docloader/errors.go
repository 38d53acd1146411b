package docloader

import "fmt"

// FetchError reports a failure to dereference a document URL. It
// carries enough detail to log: the URL and the underlying cause.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch document %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
