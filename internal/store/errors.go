package store

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

// Error wraps a persistence failure with the operation and table involved.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err and a *Error otherwise.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}
