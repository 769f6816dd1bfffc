// Package errors provides structured error types for curl-bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the option or field involved, the offending Go type,
// and the cause chain. Engine status codes travel as the Cause so callers can
// recover them with errors.As.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseOption, errors.KindTypeMismatch).
//		Option("CURLOPT_URL").
//		GoType("int").
//		Detail("string option needs a string value").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Rejected(errors.PhaseOption, "CURLOPT_URL", code)
//	err := errors.Closed(errors.PhaseHandle, "easy handle")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
