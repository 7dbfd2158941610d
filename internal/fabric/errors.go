package fabric

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying gateway failures. Callers match with
// errors.Is rather than probing stderr text themselves.
var (
	// ErrUnavailable indicates the peer binary could not be executed or
	// the network did not respond.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrAccessDenied indicates the network rejected the caller's identity
	// or the operation by policy.
	ErrAccessDenied = errors.New("access denied")

	// ErrMalformed indicates the gateway answered but its payload did not
	// decode into the expected schema.
	ErrMalformed = errors.New("malformed response")

	// ErrNotFound indicates an empty or absent query result.
	ErrNotFound = errors.New("not found")
)

// GatewayError wraps a gateway failure with the operation that produced it
// and any stderr diagnostics from the peer tool chain.
type GatewayError struct {
	Op     string // chaincode function or tool invocation, e.g. "GetEvidenceHistory"
	Kind   error  // one of the sentinel errors above
	Stderr string
	Err    error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Stderr != "" {
		msg += ": " + firstLine(e.Stderr)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Kind }

// classifyStderr maps peer stderr output to an error kind. Fabric reports
// endorsement policy rejections with an "access denied" marker, and the
// chaincode phrases missing keys as "does not exist".
func classifyStderr(stderr string) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "access denied"):
		return ErrAccessDenied
	case strings.Contains(lower, "does not exist"):
		return ErrNotFound
	}
	return ErrUnavailable
}

// firstLine trims stderr to a single actionable line for user display.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
