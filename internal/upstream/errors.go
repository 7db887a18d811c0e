package upstream

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a collaborator answers 404.
var ErrNotFound = errors.New("not found")

// TransportError means a collaborator could not be reached, timed out or
// answered with a non-success status.
type TransportError struct {
	Op     string
	Status int    // 0 when no response was received
	Body   string // excerpt of the response body
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError means a collaborator answered with something other than the
// expected JSON shape.
type SchemaError struct {
	Op     string
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %s", e.Op, e.Detail)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is a transport or schema failure of a
// collaborator.
func IsUpstream(err error) bool {
	var te *TransportError
	var se *SchemaError
	return errors.As(err, &te) || errors.As(err, &se)
}

const maxBodyExcerpt = 512

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
