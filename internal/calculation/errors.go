package calculation

import "fmt"

// ErrorKind classifies a failure by the taxonomy in spec.md §7, not by
// Go type, so the host-facing layer (C9) can report kind + code
// without reflecting on concrete error types.
type ErrorKind string

const (
	KindInputValidation ErrorKind = "input_validation"
	KindConfiguration   ErrorKind = "configuration"
	KindRuntime         ErrorKind = "runtime"
	KindHostTransport   ErrorKind = "host_transport"
)

// CodedError is a classified, machine-readable error surfaced through
// the host handle's LastError accessor. It carries a short Code
// (stable across releases) and a human Message, with an optional
// wrapped cause for Go-side unwrapping.
type CodedError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, code, message string) *CodedError {
	return &CodedError{Kind: kind, Code: code, Message: message}
}

func wrapError(kind ErrorKind, code, message string, cause error) *CodedError {
	return &CodedError{Kind: kind, Code: code, Message: message, Cause: cause}
}
