package zeno

import "errors"

// Sentinel errors. Individual failures wrap these with context (offset,
// expected vs. actual sizes) via fmt.Errorf; match with errors.Is.
var (
	// ErrFormat is returned for any structural violation in the container:
	// short header, bad magic or version, short directory entry or data
	// reads. Open-time format errors leave the container unusable;
	// per-operation format errors indicate corruption at a specific offset.
	ErrFormat = errors.New("zeno: invalid container format")

	// ErrOutOfRange is returned when an article ordinal is not less than
	// the container's article count.
	ErrOutOfRange = errors.New("zeno: article index out of range")
)
