package notify

import "fmt"

// NotificationError represents a failed best-effort notification. It is
// never fatal to the operation that triggered it: callers log it and
// move on.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
