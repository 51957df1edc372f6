package blockstore

import "github.com/pkg/errors"

// Sentinel errors classifying the failure kinds a Store can encounter.
// None of these ever escape Get or Put directly (spec.md §7 collapses both
// to absence/false); they are wrapped and surfaced only through the
// GetErr/PutErr pair for callers that want the detail.
var (
	// ErrShortRead indicates a read returned fewer bytes than required, or
	// hit EOF/an underlying file error.
	ErrShortRead = errors.New("blockstore: short read")

	// ErrNegativeSize indicates an IndexEntry decoded with size < 0 when
	// interpreted as a signed 24-bit integer.
	ErrNegativeSize = errors.New("blockstore: negative size in index entry")

	// ErrBlockOutOfRange indicates a first_block or next_block value is not
	// in (0, main_file_length/520].
	ErrBlockOutOfRange = errors.New("blockstore: block number out of range")

	// ErrChainMismatch indicates a block header's owning archive id, chunk
	// index, or owning index id does not match what the chain walk expects.
	ErrChainMismatch = errors.New("blockstore: block header mismatch")

	// ErrZeroBlock indicates the chain was terminated (next_block == 0)
	// before the declared size was fully read.
	ErrZeroBlock = errors.New("blockstore: chain terminated early")

	// ErrClosed indicates an operation on a Store whose Close has already
	// run; any such call is a programmer error.
	ErrClosed = errors.New("blockstore: use of closed store")
)
