package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // global init, handle creation
	PhaseOption   Phase = "option"   // setopt calls
	PhaseForm     Phase = "form"     // multipart form building
	PhasePerform  Phase = "perform"  // blocking transfer
	PhaseCallback Phase = "callback" // re-entrant marshaling
	PhaseHandle   Phase = "handle"   // handle table and lifecycle
	PhaseHTTP     Phase = "http"     // request building, result parsing
	PhaseCache    Phase = "cache"    // disk cache
)

// Kind categorizes the error
type Kind string

const (
	KindInitFailed   Kind = "init_failed"
	KindRejected     Kind = "rejected"
	KindInvalidInput Kind = "invalid_input"
	KindTypeMismatch Kind = "type_mismatch"
	KindClosed       Kind = "closed"
	KindBusy         Kind = "busy"
	KindStaleHandle  Kind = "stale_handle"
	KindNilPointer   Kind = "nil_pointer"
	KindProtocol     Kind = "protocol"
	KindNotFound     Kind = "not_found"
	KindUnsupported  Kind = "unsupported"
	KindIO           Kind = "io"
	KindCanceled     Kind = "canceled"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Option string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Option != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Option != "" {
			b.WriteString("option ")
			b.WriteString(e.Option)
			b.WriteString(", Go type ")
			b.WriteString(e.GoType)
		} else if e.Option != "" {
			b.WriteString("option ")
			b.WriteString(e.Option)
		} else {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Option != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Option sets the engine option name
func (b *Builder) Option(name string) *Builder {
	b.err.Option = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InitFailed creates an initialization failure error
func InitFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindInitFailed,
		Detail: what,
		Cause:  cause,
	}
}

// Rejected wraps a non-success engine status for an option, field or transfer.
// The status itself is kept as the cause, unchanged.
func Rejected(phase Phase, option string, status error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRejected,
		Option: option,
		Cause:  status,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, option, goType, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Option: option,
		GoType: goType,
		Detail: fmt.Sprintf("expected %s", want),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed reports use of a released object
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Busy reports a call made while a transfer is running on the same handle
func Busy(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBusy,
		Detail: fmt.Sprintf("%s called during perform", what),
	}
}

// StaleHandle reports a handle token whose slot was released
func StaleHandle(handle uint64) *Error {
	return &Error{
		Phase:  PhaseHandle,
		Kind:   KindStaleHandle,
		Detail: fmt.Sprintf("handle %#x is not live", handle),
		Value:  handle,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Protocol reports a callback that broke the engine's data contract
func Protocol(detail string) *Error {
	return &Error{
		Phase:  PhaseCallback,
		Kind:   KindProtocol,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// IO wraps a filesystem or stream failure
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Canceled wraps a context cancellation observed during a transfer
func Canceled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCanceled,
		Detail: "transfer canceled",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
