package exit

import (
	"fmt"
	"io"
	"os"
)

// Process exit codes, grep style.
const (
	CodeMatch   = 0
	CodeNoMatch = 1
	CodeError   = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a result that prints message to stdout and exits with CodeMatch.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeMatch,
		Message:  message,
	}
}

// Error creates a result that prints message to stderr and exits with CodeError.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeError,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromMatches maps a match count to CodeMatch or CodeNoMatch.
func FromMatches(n int) int {
	if n > 0 {
		return CodeMatch
	}
	return CodeNoMatch
}
