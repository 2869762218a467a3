package gnewsmcp

import "fmt"

// InvalidInputError reports a caller-supplied argument that violates a
// documented constraint. It is never retried and always surfaced to the
// tool caller with the violated constraint named.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
