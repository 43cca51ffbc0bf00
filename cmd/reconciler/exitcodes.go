package main

import (
	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
	exitStore    = 3
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// codeFor classifies a service error.
func codeFor(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeNotFound, domain.CodeInvalidKind, domain.CodeInvalid:
		return exitUsage
	default:
		return exitStore
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitStore
}
