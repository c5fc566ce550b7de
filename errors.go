package rangecache

import (
	"errors"
	"fmt"
)

// ErrInvalidSegments is returned by Complete for inverted or mutually
// overlapping segments.
var ErrInvalidSegments = errors.New("rangecache: invalid segments")

type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}

// ReconcileError reports segments that could be neither inserted nor merged.
// The level is left as it was before Complete.
type ReconcileError struct {
	Key       string
	InsertErr error
	MergeErr  error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile %q: insert=%v; merge=%v", e.Key, e.InsertErr, e.MergeErr)
}

func (e *ReconcileError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.InsertErr != nil {
		errs = append(errs, e.InsertErr)
	}
	if e.MergeErr != nil {
		errs = append(errs, e.MergeErr)
	}
	return errs
}
