package mmphf

import (
	"errors"
	"fmt"
)

// Sentinel error kinds produced by Build, per spec.md §7. All are
// surfaced at the builder boundary; Get never fails.
var (
	ErrDuplicateKey       = errors.New("mmphf: duplicate key")
	ErrNotPrefixFree      = errors.New("mmphf: key is a prefix of another key")
	ErrNotSorted          = errors.New("mmphf: keys are not sorted ascending")
	ErrConstructionFailed = errors.New("mmphf: construction failed")
	ErrIOFailed           = errors.New("mmphf: I/O failed")
)

func duplicateKeyErr(index int) error {
	return fmt.Errorf("%w: keys[%d] equals keys[%d]", ErrDuplicateKey, index-1, index)
}

func notPrefixFreeErr(index int) error {
	return fmt.Errorf("%w: keys[%d] and keys[%d] share a prefix relationship", ErrNotPrefixFree, index-1, index)
}

func notSortedErr(index int) error {
	return fmt.Errorf("%w: keys[%d] sorts after keys[%d]", ErrNotSorted, index-1, index)
}

func constructionFailedErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrConstructionFailed, reason)
}

func ioFailedErr(err error) error {
	return fmt.Errorf("%w: %v", ErrIOFailed, err)
}
