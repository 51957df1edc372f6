package pack

import "github.com/pkg/errors"

// Sentinel errors classifying the package-codec failure kinds of
// spec.md §7. Parse returns ErrTruncated/ErrEntryOutOfBounds/
// ErrBadCompression and Bundle.Put returns ErrCapacityExceeded; for entry
// lookups, Package.Get collapses every failure to (nil, false) for
// spec-compatibility while GetErr returns the error itself.
var (
	// ErrTruncated indicates the blob is too short to contain a valid
	// header, footer, or entry table.
	ErrTruncated = errors.New("pack: truncated blob")

	// ErrEntryOutOfBounds indicates an entry's offset_in_raw + compressed_size
	// exceeds the raw data length (spec.md invariant 4).
	ErrEntryOutOfBounds = errors.New("pack: entry out of bounds")

	// ErrBadCompression indicates a malformed BZip2 stream.
	ErrBadCompression = errors.New("pack: malformed bzip2 stream")

	// ErrNoSuchEntry indicates no entry's name hash matched.
	ErrNoSuchEntry = errors.New("pack: no such entry")

	// ErrCapacityExceeded indicates a Bundle slot index is out of range.
	ErrCapacityExceeded = errors.New("pack: slot index out of range")
)
