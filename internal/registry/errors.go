package registry

import (
	"errors"
	"fmt"
)

// ErrIntegrity marks a dataset-authoring defect discovered at lookup time.
// It is never a caller error.
var ErrIntegrity = errors.New("registry integrity violation")

// SnapshotNotFoundError is returned when an identifier is neither "latest"
// nor a known snapshot date.
type SnapshotNotFoundError struct {
	Snapshot string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("Snapshot '%s' was not found.", e.Snapshot)
}

// CategoryNotSupportedError is returned when a category is not one of the
// fixed enumeration.
type CategoryNotSupportedError struct {
	Category string
}

func (e *CategoryNotSupportedError) Error() string {
	return fmt.Sprintf("Category '%s' is not supported.", e.Category)
}

// ErrorKind classifies a resolver failure for adapters.
type ErrorKind int

// Error kinds produced by Classify.
const (
	KindNone ErrorKind = iota
	KindSnapshotNotFound
	KindCategoryNotSupported
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSnapshotNotFound:
		return "snapshot_not_found"
	case KindCategoryNotSupported:
		return "category_not_supported"
	default:
		return "internal"
	}
}

// Classify maps an error returned by the resolver to its kind.
// Anything that is not one of the two typed rejections is internal.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var snapshotErr *SnapshotNotFoundError
	if errors.As(err, &snapshotErr) {
		return KindSnapshotNotFound
	}
	var categoryErr *CategoryNotSupportedError
	if errors.As(err, &categoryErr) {
		return KindCategoryNotSupported
	}
	return KindInternal
}
