package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username / password")
)

// ValidationError carries user-facing messages in the order they were found.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) add(msg string) { e.Messages = append(e.Messages, msg) }

func (e *ValidationError) orNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}
