package blockstore

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RandomAccessFile is the file-handle capability the Store is built on:
// positioned reads/writes of byte ranges plus a length query. *os.File
// satisfies this directly.
type RandomAccessFile interface {
	io.ReaderAt
	io.WriterAt
	Stat() (os.FileInfo, error)
}

// Store persists opaque variable-length blobs keyed by a numeric archive id
// across a pair of injected files: a dense index table and a
// block-chunked main file. indexID tags every block header this Store
// writes, so two Stores sharing a main file but using distinct indexID
// values cannot read each other's archives (spec.md invariant 1).
type Store struct {
	indexID uint8
	main    RandomAccessFile
	index   RandomAccessFile

	// mu serializes Put's two-phase attempt (and Close).
	// Get allocates its own per-call buffer (the permitted optimization
	// from spec.md §5) and does not take mu, so reads on disjoint
	// archives may proceed concurrently with each other; they still race
	// harmlessly against a concurrent Put on the same archive the way any
	// unsynchronized reader/writer pair would.
	mu sync.Mutex

	closers []io.Closer
	closed  bool
}

// New returns a Store that reads and writes through the given already-open
// file handles. The returned Store does not own mainFile or indexFile;
// Close is then a no-op for them, matching spec.md's "file opening and
// lifetime are external" scoping.
func New(indexID uint8, mainFile, indexFile RandomAccessFile) *Store {
	return &Store{indexID: indexID, main: mainFile, index: indexFile}
}

// Open is an ambient convenience constructor: it opens (creating if
// necessary) the main and index files at the given paths and returns a
// Store that owns them, so Close actually releases file descriptors. This
// is not part of the core spec's injected-handle contract (see New) but is
// how a caller without its own file-lifetime management — cmd/arkstore,
// for instance — would normally obtain a Store.
func Open(indexID uint8, mainPath, indexPath string) (*Store, error) {
	mainFile, err := os.OpenFile(mainPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open main file")
	}
	indexFile, err := os.OpenFile(indexPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		mainFile.Close()
		return nil, errors.Wrap(err, "open index file")
	}
	s := New(indexID, mainFile, indexFile)
	s.closers = []io.Closer{mainFile, indexFile}
	return s, nil
}

// Close releases any file handles this Store owns (only those obtained via
// Open). Any operation on the Store afterward is a programmer error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func fileLenBlocks(f RandomAccessFile) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat")
	}
	return uint64(fi.Size()) / blockSize, nil
}

func fileLen(f RandomAccessFile) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat")
	}
	return uint64(fi.Size()), nil
}

// Get returns the blob stored under archiveID, or (nil, false) on any
// validation failure or IO error. Per spec.md §7, failure is conflated
// with absence; use GetErr to distinguish the two.
func (s *Store) Get(archiveID uint32) ([]byte, bool) {
	b, err := s.GetErr(archiveID)
	if err != nil {
		return nil, false
	}
	return b, true
}

// GetErr is the non-legacy form of Get: it returns a wrapped, classified
// error instead of collapsing every failure to absence.
func (s *Store) GetErr(archiveID uint32) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}

	entryBuf := make([]byte, indexEntrySize)
	if _, err := s.index.ReadAt(entryBuf, int64(indexEntrySize)*int64(archiveID)); err != nil {
		return nil, errors.Wrap(ErrShortRead, "read index entry")
	}
	entry := decodeIndexEntry(entryBuf)
	if entry.size < 0 {
		return nil, ErrNegativeSize
	}
	if entry.firstBlock <= 0 {
		return nil, ErrBlockOutOfRange
	}
	if entry.size == 0 {
		// Put never writes a block for a zero-length blob (the chunk loop
		// doesn't run), so first_block names no chain to validate: a
		// positive first_block here only distinguishes "an id was Put with
		// an empty blob" from "this id was never Put" (first_block == 0).
		return []byte{}, nil
	}

	mainBlocks, err := fileLenBlocks(s.main)
	if err != nil {
		return nil, err
	}
	if uint64(entry.firstBlock) > mainBlocks {
		return nil, ErrBlockOutOfRange
	}

	size := uint32(entry.size)
	out := make([]byte, size)

	var written uint32
	chunk := uint16(0)
	block := uint32(entry.firstBlock)

	buf := make([]byte, blockSize)
	for written < size {
		if block == 0 {
			log.Debug().Uint32("archive_id", archiveID).Msg("blockstore: chain terminated early")
			return nil, ErrZeroBlock
		}

		payloadLen := size - written
		if payloadLen > blockPayloadSize {
			payloadLen = blockPayloadSize
		}
		readLen := int(payloadLen) + blockHeaderSize

		if _, err := s.main.ReadAt(buf[:readLen], int64(blockSize)*int64(block)); err != nil {
			return nil, errors.Wrap(ErrShortRead, "read block")
		}

		hdr := decodeBlockHeader(buf[:blockHeaderSize])
		if hdr.owningArchiveID != uint16(archiveID) || hdr.chunkIndex != chunk || hdr.owningIndexID != s.indexID {
			log.Debug().
				Uint32("archive_id", archiveID).
				Uint32("block", block).
				Msg("blockstore: block header mismatch, treating as absent")
			return nil, ErrChainMismatch
		}
		if uint64(hdr.nextBlock) > mainBlocks {
			return nil, ErrBlockOutOfRange
		}

		copy(out[written:written+payloadLen], buf[blockHeaderSize:readLen])
		written += payloadLen
		block = hdr.nextBlock
		chunk++
	}

	return out, nil
}

// Put stores src under archiveID and reports whether it succeeded. It
// attempts to reuse any existing block chain for archiveID first, falling
// back to a pure append if the existing chain fails validation partway
// through (see PutErr for the two-phase detail).
func (s *Store) Put(src []byte, archiveID uint32) bool {
	return s.PutErr(src, archiveID) == nil
}

// PutErr is the non-legacy form of Put.
func (s *Store) PutErr(src []byte, archiveID uint32) error {
	if s.closed {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if firstBlock, ok := s.existingFirstBlock(archiveID); ok {
		if err := s.putAttempt(src, archiveID, firstBlock, true); err == nil {
			return nil
		}
		log.Debug().Uint32("archive_id", archiveID).Msg("blockstore: reuse attempt failed, retrying as append")
	}

	firstBlock, err := s.freshAppendBlock(0)
	if err != nil {
		return err
	}
	return s.putAttempt(src, archiveID, firstBlock, false)
}

// existingFirstBlock reads archiveID's current IndexEntry and reports its
// first_block if the chain's head looks structurally sound.
func (s *Store) existingFirstBlock(archiveID uint32) (uint32, bool) {
	entryBuf := make([]byte, indexEntrySize)
	if _, err := s.index.ReadAt(entryBuf, int64(indexEntrySize)*int64(archiveID)); err != nil {
		return 0, false
	}
	entry := decodeIndexEntry(entryBuf)
	if entry.firstBlock <= 0 {
		return 0, false
	}
	mainBlocks, err := fileLenBlocks(s.main)
	if err != nil || uint64(entry.firstBlock) > mainBlocks {
		return 0, false
	}
	return uint32(entry.firstBlock), true
}

// freshAppendBlock returns ceil(main_file_length/520), clamped to at least
// 1 (block 0 is reserved) and, if avoid is nonzero, bumped past it.
func (s *Store) freshAppendBlock(avoid uint32) (uint32, error) {
	mainLen, err := fileLen(s.main)
	if err != nil {
		return 0, err
	}
	b := ceilDiv(mainLen, blockSize)
	if b < 1 {
		b = 1
	}
	if avoid != 0 && uint32(b) == avoid {
		b++
	}
	return uint32(b), nil
}

// putAttempt writes archiveID's IndexEntry and then walks/creates its block
// chain starting at firstBlock. exists indicates whether the chain rooted
// at firstBlock is believed to already exist and should be validated and
// reused chunk-by-chunk. A reused block that fails validation aborts the
// attempt with an error (PutErr then retries the whole blob as a fresh
// append); once a terminal (next_block == 0) block is hit with data
// remaining, the remainder of the chain is appended fresh, matching
// spec.md §4.1 step 3.
func (s *Store) putAttempt(src []byte, archiveID uint32, firstBlock uint32, exists bool) error {
	length := uint32(len(src))

	entry := indexEntry{size: int32(length), firstBlock: int32(firstBlock)}
	if _, err := s.index.WriteAt(encodeIndexEntry(entry), int64(indexEntrySize)*int64(archiveID)); err != nil {
		return errors.Wrap(err, "write index entry")
	}

	var written uint32
	chunk := uint16(0)
	cur := firstBlock

	for written < length {
		remainder := length - written
		payloadLen := remainder
		if payloadLen > blockPayloadSize {
			payloadLen = blockPayloadSize
		}
		isLast := remainder <= blockPayloadSize

		var nextBlock uint32
		if exists {
			hdr, err := s.readBlockHeaderAt(cur)
			if err != nil {
				return errors.Wrap(err, "read existing block header")
			}
			if hdr.owningArchiveID != uint16(archiveID) || hdr.chunkIndex != chunk || hdr.owningIndexID != s.indexID {
				return errors.Wrap(ErrChainMismatch, "reused chain diverges")
			}
			mainBlocks, err := fileLenBlocks(s.main)
			if err != nil {
				return err
			}
			if uint64(hdr.nextBlock) > mainBlocks {
				return errors.Wrap(ErrBlockOutOfRange, "reused chain next_block")
			}
			nextBlock = hdr.nextBlock
		}

		if nextBlock == 0 && !isLast {
			appendBlock, err := s.freshAppendBlock(cur)
			if err != nil {
				return err
			}
			nextBlock = appendBlock
			exists = false
		}
		if isLast {
			nextBlock = 0
		}

		hdr := blockHeader{
			owningArchiveID: uint16(archiveID),
			chunkIndex:      chunk,
			nextBlock:       nextBlock,
			owningIndexID:   s.indexID,
		}
		if err := s.writeBlockAt(cur, hdr, src[written:written+payloadLen]); err != nil {
			return errors.Wrap(err, "write block")
		}

		written += payloadLen
		cur = nextBlock
		chunk++
	}

	return nil
}

func (s *Store) readBlockHeaderAt(block uint32) (blockHeader, error) {
	buf := make([]byte, blockHeaderSize)
	if _, err := s.main.ReadAt(buf, int64(blockSize)*int64(block)); err != nil {
		return blockHeader{}, errors.Wrap(ErrShortRead, "read block header")
	}
	return decodeBlockHeader(buf), nil
}

func (s *Store) writeBlockAt(block uint32, hdr blockHeader, payload []byte) error {
	buf := make([]byte, blockHeaderSize+len(payload))
	copy(buf, encodeBlockHeader(hdr))
	copy(buf[blockHeaderSize:], payload)
	_, err := s.main.WriteAt(buf, int64(blockSize)*int64(block))
	return err
}
