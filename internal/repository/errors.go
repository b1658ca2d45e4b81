package repository

import (
	"errors"
	"fmt"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError reports a sheet that does not have the expected shape:
// a missing column (Row == 0) or a cell that cannot be typed.
type SchemaMismatchError struct {
	Table  string
	Column string
	Row    int
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("schema mismatch in %s: missing column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("schema mismatch in %s row %d column %q: %s", e.Table, e.Row, e.Column, e.Reason)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
