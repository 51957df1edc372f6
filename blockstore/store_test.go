package blockstore

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(indexID uint8) (*Store, *memFile, *memFile) {
	main := newMemFile()
	index := newMemFile()
	return New(indexID, main, index), main, index
}

func TestRoundTripRandom(t *testing.T) {
	s, _, _ := newTestStore(0)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		id := uint32(r.Intn(1000))
		length := r.Intn(4000)
		b := make([]byte, length)
		r.Read(b)

		require.True(t, s.Put(b, id))
		got, ok := s.Get(id)
		require.True(t, ok)
		require.Equal(t, b, got)
	}
}

func TestEmptyBlob(t *testing.T) {
	s, _, _ := newTestStore(0)
	require.True(t, s.Put(nil, 7))
	got, ok := s.Get(7)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestChunkBoundaries(t *testing.T) {
	cases := []struct {
		size   int
		blocks int
	}{
		{512, 1},
		{513, 2},
		{1024, 2},
		{1025, 3},
	}
	for _, c := range cases {
		s, _, index := newTestStore(0)
		b := bytes.Repeat([]byte{0x5a}, c.size)
		require.True(t, s.Put(b, 1))

		got, ok := s.Get(1)
		require.True(t, ok)
		require.Equal(t, b, got)

		// Walk the chain ourselves to confirm the expected block count.
		idxBuf := make([]byte, indexEntrySize)
		_, err := index.ReadAt(idxBuf, 6*1)
		require.NoError(t, err)
		entry := decodeIndexEntry(idxBuf)

		blocks := 0
		block := uint32(entry.firstBlock)
		for block != 0 {
			blocks++
			hdr, err := s.readBlockHeaderAt(block)
			require.NoError(t, err)
			block = hdr.nextBlock
		}
		require.Equal(t, c.blocks, blocks)
	}
}

func TestOverwriteLongerThenShorter(t *testing.T) {
	s, _, _ := newTestStore(0)
	long := bytes.Repeat([]byte{0x11}, 2000)
	require.True(t, s.Put(long, 5))
	got, ok := s.Get(5)
	require.True(t, ok)
	require.Equal(t, long, got)

	short := bytes.Repeat([]byte{0x22}, 100)
	require.True(t, s.Put(short, 5))
	got, ok = s.Get(5)
	require.True(t, ok)
	require.Equal(t, short, got)
}

func TestOverwriteShorterThenLonger(t *testing.T) {
	s, _, _ := newTestStore(0)
	short := bytes.Repeat([]byte{0x22}, 100)
	require.True(t, s.Put(short, 5))

	long := bytes.Repeat([]byte{0x11}, 2000)
	require.True(t, s.Put(long, 5))
	got, ok := s.Get(5)
	require.True(t, ok)
	require.Equal(t, long, got)
}

func TestCorruptionDetection(t *testing.T) {
	mutate := func(mutator func(main *memFile, firstBlock uint32)) {
		s, main, index := newTestStore(0)
		b := bytes.Repeat([]byte{0x33}, 700)
		require.True(t, s.Put(b, 3))

		idxBuf := make([]byte, indexEntrySize)
		_, err := index.ReadAt(idxBuf, 6*3)
		require.NoError(t, err)
		entry := decodeIndexEntry(idxBuf)

		mutator(main, uint32(entry.firstBlock))

		_, ok := s.Get(3)
		require.False(t, ok)
	}

	mutate(func(main *memFile, firstBlock uint32) {
		// Flip owning_archive_id.
		off := int64(blockSize)*int64(firstBlock) + 1
		main.buf[off] ^= 0xFF
	})
	mutate(func(main *memFile, firstBlock uint32) {
		// Flip chunk_index.
		off := int64(blockSize)*int64(firstBlock) + 3
		main.buf[off] ^= 0xFF
	})
	mutate(func(main *memFile, firstBlock uint32) {
		// Flip owning_index_id.
		off := int64(blockSize)*int64(firstBlock) + 7
		main.buf[off] ^= 0xFF
	})
}

func TestCrossIndexIsolation(t *testing.T) {
	main := newMemFile()
	indexA := newMemFile()
	indexB := newMemFile()

	storeA := New(0, main, indexA)
	storeB := New(1, main, indexB)

	data := []byte("only store A should read this back")
	require.True(t, storeA.Put(data, 42))

	// Copy A's index entry into B's index so B's chain walk actually reaches
	// A's blocks. Those blocks carry owning_index_id == 0 (A's indexID), so
	// B (indexID 1) must reject them at the header check in GetErr rather
	// than merely finding its own index entry absent.
	idxBuf := make([]byte, indexEntrySize)
	_, err := indexA.ReadAt(idxBuf, 6*42)
	require.NoError(t, err)
	_, err = indexB.WriteAt(idxBuf, 6*42)
	require.NoError(t, err)

	_, ok := storeB.Get(42)
	require.False(t, ok)

	// Sanity check: A can still read its own data back through the shared
	// main file.
	got, ok := storeA.Get(42)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestScenario700Bytes(t *testing.T) {
	s, main, _ := newTestStore(0)
	b := bytes.Repeat([]byte{0xAA}, 700)
	require.True(t, s.Put(b, 3))

	hdr1 := encodeBlockHeader(blockHeader{owningArchiveID: 3, chunkIndex: 0, nextBlock: 2, owningIndexID: 0})
	hdr2 := encodeBlockHeader(blockHeader{owningArchiveID: 3, chunkIndex: 1, nextBlock: 0, owningIndexID: 0})

	got1 := make([]byte, blockHeaderSize)
	_, err := main.ReadAt(got1, blockSize)
	require.NoError(t, err)
	require.Equal(t, hdr1, got1)

	got2 := make([]byte, blockHeaderSize)
	_, err = main.ReadAt(got2, 2*blockSize)
	require.NoError(t, err)
	require.Equal(t, hdr2, got2)

	got, ok := s.Get(3)
	require.True(t, ok)
	require.Equal(t, b, got)
}
