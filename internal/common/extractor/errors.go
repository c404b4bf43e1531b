package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrContentTimeout means the table container never appeared within the wait timeout
	ErrContentTimeout = errors.New("timed out waiting for content")
	// ErrRequiredFieldMissing means a row lacks a field the schema marks required
	ErrRequiredFieldMissing = errors.New("required field missing")
	// ErrFieldParse means a numeric field's display text is not a non-negative integer
	ErrFieldParse = errors.New("field parse error")
)

// FieldError locates a row-level failure. It unwraps to ErrRequiredFieldMissing or ErrFieldParse.
type FieldError struct {
	Field string
	Page  int // 1-based
	Row   int // 0-based within the page
	Text  string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("page %d row %d field %q (%q): %v", e.Page, e.Row, e.Field, e.Text, e.Err)
	}
	return fmt.Sprintf("page %d row %d field %q: %v", e.Page, e.Row, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
