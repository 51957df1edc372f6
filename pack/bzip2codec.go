package pack

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

// bzip2Decompress decompresses the whole BZip2 stream in src; size is used
// only as the initial capacity of the output buffer. Spec.md's per-entry "potential bug" (§9) stores uncompressed_size ==
// compressed_size for per-entry-compressed payloads produced by an unfixed
// encoder; this Bundle fixes that (see DESIGN.md), but a decoder still has
// to tolerate undersized size hints from foreign blobs, so it reads the
// stream to completion rather than trusting size as a hard cap.
func bzip2Decompress(src []byte, size uint32) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(src), nil)
	if err != nil {
		return nil, errors.Wrap(ErrBadCompression, err.Error())
	}
	defer r.Close()

	out := make([]byte, 0, size)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrBadCompression, err.Error())
		}
	}
	return out, nil
}

// bzip2Compress compresses src into a fresh BZip2 stream.
func bzip2Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create bzip2 writer")
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "bzip2 compress")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close bzip2 writer")
	}
	return buf.Bytes(), nil
}
