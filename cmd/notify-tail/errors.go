package main

import (
	"errors"
	"fmt"
	"io"
)

type cliError struct {
	Code    int
	Message string
}

func (e *cliError) Error() string {
	return e.Message
}

func cliErr(code int, message string) *cliError {
	return &cliError{Code: code, Message: message}
}

func cliErrf(code int, format string, args ...any) *cliError {
	return &cliError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func handleCLIError(err error, errOut io.Writer) int {
	var typed *cliError
	if errors.As(err, &typed) {
		fmt.Fprintln(errOut, typed.Message)
		if typed.Code != 0 {
			return typed.Code
		}
		return exitCodeRuntime
	}
	fmt.Fprintln(errOut, err.Error())
	return exitCodeRuntime
}
