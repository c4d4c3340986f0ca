package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrParse        = errors.New("parse error")
)

// ParseError indica que un string de fecha u hora no respeta el formato esperado.
type ParseError struct {
	Layout string // "HH:MM" o "YYYY-MM-DD"
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %q does not match %s", e.Value, e.Layout)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InvalidInputError envuelve una entrada rechazada (hora mal formada, frecuencia
// desconocida en modo estricto, etc). Err puede ser un *ParseError.
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func (e *InvalidInputError) Unwrap() error { return e.Err }
