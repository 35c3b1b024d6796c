package mmdberrors

import (
	"errors"
	"fmt"
)

// ContextualError wraps a structural decode error with the data-section
// offset at which decoding started, so a caller diagnosing a corrupt
// database knows where in the file to look.
type ContextualError struct {
	Err    error
	Offset uint
}

func (e ContextualError) Error() string {
	return fmt.Sprintf("at offset %d: %v", e.Offset, e.Err)
}

func (e ContextualError) Unwrap() error {
	return e.Err
}

// WrapWithOffset attaches offset context to err. A nil err passes through
// untouched so callers can wrap unconditionally on the return path, and an
// error that already carries offset context keeps its original (innermost,
// most precise) offset.
func WrapWithOffset(err error, offset uint) error {
	if err == nil {
		return nil
	}
	var existing ContextualError
	if errors.As(err, &existing) {
		return err
	}
	return ContextualError{Err: err, Offset: offset}
}
