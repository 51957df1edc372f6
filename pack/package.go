package pack

import "github.com/pkg/errors"

// Package is the decoder side of the archive package codec: a parsed blob
// exposing its entries by name (matched only by name hash, spec.md
// invariant 5/6).
type Package struct {
	isWhollyCompressed bool
	entries            []entryMeta

	// raw is the byte slice entry offsets are relative to: the decompressed
	// footer if the package was wholly compressed, otherwise the whole
	// source blob (6-byte header included). It is nil once Unpack has
	// dropped it.
	raw []byte

	// cache holds eagerly-unpacked entry bytes once Unpack has run; nil
	// until then.
	cache [][]byte
}

// Parse parses src per the blob layout documented in format.go.
func Parse(src []byte) (*Package, error) {
	if len(src) < headerSize {
		return nil, ErrTruncated
	}

	uSize := decodeU24BE(src[0:3])
	cSize := decodeU24BE(src[3:6])
	wholly := cSize != uSize

	var raw []byte
	if wholly {
		body := src[headerSize:]
		if uint32(len(body)) < cSize {
			return nil, ErrTruncated
		}
		decompressed, err := bzip2Decompress(body[:cSize], uSize)
		if err != nil {
			return nil, err
		}
		raw = decompressed
	} else {
		raw = src
	}

	base := 0
	if !wholly {
		base = headerSize
	}
	if len(raw) < base+2 {
		return nil, ErrTruncated
	}
	amount := decodeU16BE(raw[base : base+2])
	metaBase := base + 2
	dataCursor := metaBase + entryMetaSize*int(amount)
	if dataCursor < 0 || len(raw) < dataCursor {
		return nil, ErrTruncated
	}

	entries := make([]entryMeta, amount)
	for i := 0; i < int(amount); i++ {
		off := metaBase + i*entryMetaSize
		if off+entryMetaSize > len(raw) {
			return nil, ErrTruncated
		}
		m := decodeEntryMeta(raw[off : off+entryMetaSize])
		m.offsetInRaw = uint32(dataCursor)
		if uint64(dataCursor)+uint64(m.compressedSize) > uint64(len(raw)) {
			return nil, ErrEntryOutOfBounds
		}
		dataCursor += int(m.compressedSize)
		entries[i] = m
	}

	return &Package{isWhollyCompressed: wholly, entries: entries, raw: raw}, nil
}

// IsWhollyCompressed reports whether the package's entire footer was a
// single BZip2 stream (as opposed to per-entry compression).
func (p *Package) IsWhollyCompressed() bool { return p.isWhollyCompressed }

// Count returns the number of entries in the package.
func (p *Package) Count() int { return len(p.entries) }

// HashAt returns the name hash of the entry at index i, for callers that
// want to enumerate the package (names themselves are never stored on
// disk, only their hashes — spec.md invariant 5).
func (p *Package) HashAt(i int) int32 { return p.entries[i].nameHash }

// Get returns the bytes of the entry named name, hashed per NameHash. It
// returns (nil, false) on either no match or a per-entry decompression
// failure, per spec.md §7's policy that callers must not distinguish those
// two modes.
func (p *Package) Get(name string) ([]byte, bool) {
	b, err := p.GetErr(name)
	if err != nil {
		return nil, false
	}
	return b, true
}

// GetErr is the non-legacy form of Get.
func (p *Package) GetErr(name string) ([]byte, error) {
	h := NameHash(name)
	for i, m := range p.entries {
		if m.nameHash != h {
			continue
		}
		return p.entryBytes(i)
	}
	return nil, ErrNoSuchEntry
}

// Unpack eagerly decompresses every entry once and caches the result,
// after which raw may be dropped: subsequent Get calls are served from the
// cache instead of re-decompressing.
func (p *Package) Unpack() error {
	cache := make([][]byte, len(p.entries))
	for i := range p.entries {
		b, err := p.entryBytes(i)
		if err != nil {
			return err
		}
		cache[i] = b
	}
	p.cache = cache
	p.raw = nil
	return nil
}

func (p *Package) entryBytes(i int) ([]byte, error) {
	if p.cache != nil {
		out := make([]byte, len(p.cache[i]))
		copy(out, p.cache[i])
		return out, nil
	}

	m := p.entries[i]
	if uint64(m.offsetInRaw)+uint64(m.compressedSize) > uint64(len(p.raw)) {
		return nil, ErrEntryOutOfBounds
	}
	region := p.raw[m.offsetInRaw : m.offsetInRaw+m.compressedSize]

	if p.isWhollyCompressed {
		// Already decompressed as part of the whole-footer BZip2 stream;
		// stored compressed_size equals uncompressed_size in this case.
		out := make([]byte, len(region))
		copy(out, region)
		return out, nil
	}

	out, err := bzip2Decompress(region, m.uncompressedSize)
	if err != nil {
		return nil, errors.Wrap(err, "decompress entry")
	}
	return out, nil
}
