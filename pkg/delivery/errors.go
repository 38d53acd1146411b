package delivery

import "fmt"

// DeliveryError reports a non-2xx response from a destination inbox.
// It is logged with full context before being returned, and is never
// retried internally.
type DeliveryError struct {
	ActivityID string
	Inbox      string
	StatusCode int
	Status     string
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf(
		"failed to deliver %s to %s: %s (%q)",
		e.ActivityID,
		e.Inbox,
		e.Status,
		e.Body,
	)
}
