package store

import (
	"errors"
	"fmt"

	"github.com/andri/pocs/pkg/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("object does not exist")

	// ErrConstraint matches every *ConstraintError.
	ErrConstraint = errors.New("integrity constraint violated")
)

// NotFoundError reports a missing row.
type NotFoundError struct {
	Model string
	ID    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s matching id=%d does not exist", e.Model, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConstraintError wraps a database integrity failure, such as saving a Post
// without a datetime.
type ConstraintError struct {
	Model string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("integrity error saving %s: %v", e.Model, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConstraint) succeed.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

// DumpError reports a failing statement while restoring a dump.
type DumpError struct {
	Line int
	Err  error
}

func (e *DumpError) Error() string {
	return fmt.Sprintf("restore dump: statement at line %d: %v", e.Line, e.Err)
}

func (e *DumpError) Unwrap() error {
	return e.Err
}

// coder is implemented by *sqlite.Error.
type coder interface {
	Code() int
}

var _ coder = (*sqlite.Error)(nil)

func sqliteCode(err error) (int, bool) {
	var c coder
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return 0, false
}

// classify wraps constraint failures raised while writing meta's table.
func classify(err error, meta model.Meta) error {
	if err == nil {
		return nil
	}
	if code, ok := sqliteCode(err); ok && code&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &ConstraintError{Model: meta.ModelName, Err: err}
	}
	return err
}
