package questionbank

import "fmt"

// ValidationError reports a question bank that fails schema or semantic
// checks. Path locates the offending value, e.g. "topics[2].questions[0]".
type ValidationError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("invalid question bank at %s: %s: %v", e.Path, e.Msg, e.Err)
	case e.Path != "":
		return fmt.Sprintf("invalid question bank at %s: %s", e.Path, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("invalid question bank: %s: %v", e.Msg, e.Err)
	}
	return "invalid question bank: " + e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
