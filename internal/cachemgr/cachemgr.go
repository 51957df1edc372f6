// Package cachemgr composes a single blockstore.Store with the pack codec
// to answer "entry name of archive id" in one call. Spec.md §1 names "the
// higher-level cache manager that decides which index to query" as an
// external collaborator of the core, so this package is deliberately thin
// and outside blockstore/pack's own import graph: it is the composition
// spec.md §2's "Data flow for a typical read path" describes, given a home
// a caller can actually construct.
package cachemgr

import (
	"github.com/rs/zerolog/log"

	"github.com/arkstore/arkstore/blockstore"
	"github.com/arkstore/arkstore/pack"
)

// Cache answers entry lookups against archives stored in a single
// blockstore.Store indexed by numeric archive id.
type Cache struct {
	store *blockstore.Store
}

// New wraps an already-constructed Store.
func New(store *blockstore.Store) *Cache {
	return &Cache{store: store}
}

// Entry resolves id -> blob via the Store, then name -> bytes via the
// package codec. It returns (nil, false) if the archive is absent or
// corrupt, or if the archive doesn't decode as a package, or if name isn't
// present — callers cannot and should not distinguish those cases, per
// spec.md §7.
func (c *Cache) Entry(id uint32, name string) ([]byte, bool) {
	blob, ok := c.store.Get(id)
	if !ok {
		log.Debug().Uint32("archive_id", id).Msg("cachemgr: archive absent or corrupt")
		return nil, false
	}

	pkg, err := pack.Parse(blob)
	if err != nil {
		log.Debug().Uint32("archive_id", id).Err(err).Msg("cachemgr: archive did not decode as a package")
		return nil, false
	}

	return pkg.Get(name)
}

// PutPackage packs bundle and stores the result under id.
func (c *Cache) PutPackage(id uint32, bundle *pack.Bundle) bool {
	blob, err := bundle.Pack()
	if err != nil {
		log.Debug().Uint32("archive_id", id).Err(err).Msg("cachemgr: pack failed")
		return false
	}
	return c.store.Put(blob, id)
}
