package pack

// Bundle is the encoder side of the archive package codec: a fixed-capacity
// slot table that is populated via Put/Remove and emitted once via Pack.
type Bundle struct {
	wholeCompressed bool
	slots           []*slot

	activeCount         int
	totalCompressedSize int
}

// slot mirrors spec.md's SlotContents: payload is already BZip2-compressed
// iff the Bundle is not wholly compressed.
type slot struct {
	nameHash         int32
	uncompressedSize uint32
	compressedSize   uint32
	payload          []byte
}

// NewBundle returns a Bundle with capacity fixed slots. wholeCompressed
// selects whole-package BZip2 compression (the entire footer is one
// stream) over per-entry compression.
func NewBundle(capacity int, wholeCompressed bool) *Bundle {
	return &Bundle{wholeCompressed: wholeCompressed, slots: make([]*slot, capacity)}
}

// ActiveCount returns the number of occupied slots.
func (b *Bundle) ActiveCount() int { return b.activeCount }

// Put stores payload under name at the given slot index. If the Bundle is
// not wholly compressed, payload is BZip2-compressed immediately.
//
// Unlike the spec's own source (see spec.md §9's design note and
// DESIGN.md's "Open Question" entry), uncompressedSize always records the
// true pre-compression length of payload, even under per-entry
// compression — not compressedSize duplicated into both fields.
func (b *Bundle) Put(index int, name string, payload []byte) error {
	if index < 0 || index >= len(b.slots) {
		return ErrCapacityExceeded
	}

	var stored []byte
	uncompressedSize := uint32(len(payload))
	var compressedSize uint32

	if b.wholeCompressed {
		// Entries are not individually compressed; the whole footer is
		// compressed once in Pack.
		stored = append([]byte(nil), payload...)
		compressedSize = uncompressedSize
	} else {
		compressed, err := bzip2Compress(payload)
		if err != nil {
			return err
		}
		stored = compressed
		compressedSize = uint32(len(compressed))
	}

	if existing := b.slots[index]; existing != nil {
		b.totalCompressedSize -= len(existing.payload)
	} else {
		b.activeCount++
	}
	b.slots[index] = &slot{
		nameHash:         NameHash(name),
		uncompressedSize: uncompressedSize,
		compressedSize:   compressedSize,
		payload:          stored,
	}
	b.totalCompressedSize += len(stored)
	return nil
}

// Remove clears the slot at index, if occupied.
func (b *Bundle) Remove(index int) {
	if index < 0 || index >= len(b.slots) {
		return
	}
	if b.slots[index] != nil {
		b.totalCompressedSize -= len(b.slots[index].payload)
		b.slots[index] = nil
		b.activeCount--
	}
}

// Pack emits the Bundle as a single blob per the layout documented in
// format.go: a 6-byte header followed by the (optionally whole-package
// BZip2 compressed) footer.
func (b *Bundle) Pack() ([]byte, error) {
	footerLen := b.activeCount*entryMetaSize + b.totalCompressedSize + 2
	footer := make([]byte, footerLen)
	encodeU16BE(footer[0:2], uint16(b.activeCount))

	metaOff := 2
	dataOff := 2 + b.activeCount*entryMetaSize
	for _, s := range b.slots {
		if s == nil {
			continue
		}
		meta := entryMeta{
			nameHash:         s.nameHash,
			uncompressedSize: s.uncompressedSize,
			compressedSize:   s.compressedSize,
		}
		copy(footer[metaOff:metaOff+entryMetaSize], encodeEntryMeta(meta))
		metaOff += entryMetaSize
	}
	for _, s := range b.slots {
		if s == nil {
			continue
		}
		copy(footer[dataOff:dataOff+len(s.payload)], s.payload)
		dataOff += len(s.payload)
	}

	var body []byte
	if b.wholeCompressed {
		compressed, err := bzip2Compress(footer)
		if err != nil {
			return nil, err
		}
		body = compressed
	} else {
		body = footer
	}

	header := make([]byte, headerSize)
	encodeU24BE(header[0:3], uint32(len(footer)))
	encodeU24BE(header[3:6], uint32(len(body)))

	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out, nil
}
