/*
Package blockstore implements the block-chained file store: a persistence
layer that maps a numeric archive id to an opaque byte blob across a pair
of flat files, an index table and a block-chunked main file.

Layout (big-endian throughout):

	index file: dense array of 6-byte IndexEntry records.
	  record i at byte offset 6*i = [size_hi, size_mid, size_lo, first_hi, first_mid, first_lo]

	main file: dense array of 520-byte Block records.
	  block b at byte offset 520*b = [arc_hi, arc_lo, chunk_hi, chunk_lo,
	                                   next_hi, next_mid, next_lo, idx_id, payload[0..512]]

Block index 0 is reserved and is never a valid first or next block.
*/
package blockstore
