// Package errors provides error handling conventions for mcpswitch.
//
// This package re-exports the wrapping helpers of github.com/cockroachdb/errors,
// defines sentinel errors for common failure conditions and an ExitError type
// for CLI exit code handling.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, mcperrors.ErrNotFound) {
//	    // handle not found case
//	}
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, unknown server, etc.)
//   - ExitSystem (2): System-related error (I/O, malformed config files, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion
// for CLI applications. It supports error unwrapping via [errors.Unwrap] and
// [errors.As]:
//
//	err := mcperrors.NewUserError(mcperrors.ErrInvalidConfig, "Check your config file")
//	var exitErr *mcperrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
