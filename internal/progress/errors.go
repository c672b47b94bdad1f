package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session id is not in the document.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when a closed session is mutated or ended again.
	ErrSessionClosed = errors.New("session already closed")
)

// SaveError reports that a change was applied in memory but could not be
// persisted. Callers should surface it as a warning and carry on.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save progress after %s: %v", e.Op, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// IsSaveWarning reports whether err is only a persistence failure, meaning
// the operation itself succeeded.
func IsSaveWarning(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}
