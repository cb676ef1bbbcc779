package main

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	exitSuccess      = 0
	exitConversion   = 1 // at least one chain failed to convert
	exitRuntime      = 2
	exitFileNotFound = 3
	exitConfig       = 4
)

// ExitError is an error that carries a specific process exit code.
// Commands return it from RunE to tell main how to exit.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// exitError creates a new ExitError with the given code and formatted message.
func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	return exitRuntime
}
