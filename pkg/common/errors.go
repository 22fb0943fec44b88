package common

import (
	"errors"
	"fmt"
)

// Error kinds shared by geometry and the partition trees. Every typed error
// below matches exactly one of them through errors.Is.
var (
	ErrConstruction           = errors.New("construction error")
	ErrOutOfBounds            = errors.New("key out of bounds")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrUnsupported            = fmt.Errorf("operation not supported: %w", errors.ErrUnsupported)
)

// NodeSizeError reports a non-positive max node size.
type NodeSizeError struct {
	Size int
}

func (e *NodeSizeError) Error() string {
	return fmt.Sprintf("max node size must be positive, got %d", e.Size)
}

func (e *NodeSizeError) Unwrap() error { return ErrConstruction }

// DimensionMismatchError reports two geometries (or a key and a tree) whose
// dimension counts differ.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrConstruction }

// DimensionsError reports a dimension count outside the supported range.
type DimensionsError struct {
	Dims     int
	Min, Max int
}

func (e *DimensionsError) Error() string {
	return fmt.Sprintf("unsupported dimension count %d (want %d..%d)", e.Dims, e.Min, e.Max)
}

func (e *DimensionsError) Unwrap() error { return ErrConstruction }

// OutOfBoundsError reports a key that the tree's root region does not contain.
type OutOfBoundsError struct {
	Key    string
	Bounds string
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("key %s is outside bounds %s", e.Key, e.Bounds)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// ConcurrentModificationError is raised by a traversal whose tree changed
// after the traversal started.
type ConcurrentModificationError struct {
	Expected uint64
	Actual   uint64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("tree modified during traversal (mod count %d, want %d)", e.Actual, e.Expected)
}

func (e *ConcurrentModificationError) Unwrap() error { return ErrConcurrentModification }

// UnsupportedOperationError names an operation a tree variant does not offer.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: not supported by immutable tree", e.Op)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupported }
