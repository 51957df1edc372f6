/*
Package pack implements the archive package codec: packing/unpacking a
directory-like collection of named entries into a single blob, with
either whole-package or per-entry BZip2 compression and a compact
name-hash lookup.

Blob layout (big-endian throughout):

	offset 0..3   : uncompressed_size of the footer (BE u24)
	offset 3..6   : compressed_size of the body (BE u24)
	offset 6..    : body
	  if compressed_size != uncompressed_size: body is a BZip2 stream
	                  producing the footer
	  else:          body IS the footer

	footer layout:
	  [0..2]             : entry_count (BE u16)
	  [2..2+10*N]        : N x { name_hash BE i32, usize BE u24, csize BE u24 }
	  [2+10*N..]         : N entry bodies concatenated in declaration order
	                       (each csize[i] bytes, BZip2-compressed iff the
	                       outer package is not wholly compressed)
*/
package pack
