package vocab

import (
	"fmt"
	"strings"
)

// TypeMismatchError reports that a document structurally matched none
// of the candidate types attempted for it. A single-candidate mismatch
// tells the resolver to try the next candidate; exhausting every
// candidate surfaces a mismatch naming all of them.
type TypeMismatchError struct {
	URL       string
	Attempted []string
}

func (e *TypeMismatchError) Error() string {
	attempted := strings.Join(e.Attempted, ", ")
	if e.URL == "" {
		return fmt.Sprintf("document matched no candidate type (attempted: %s)", attempted)
	}
	return fmt.Sprintf("document %s matched no candidate type (attempted: %s)", e.URL, attempted)
}
