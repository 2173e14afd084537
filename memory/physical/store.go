// This file is part of Bellum.
//
// Bellum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Bellum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Bellum.  If not, see <https://www.gnu.org/licenses/>.

package physical

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/xazalea/bellum-sub003/faults"
)

// Store represents all physical memory that backs committed pages. It has a
// fixed capacity but the bytes themselves are only created when a range of
// physical memory is carved out of the store. An unused capacity of 512MiB
// costs nothing.
//
// Physical addresses run from zero to the capacity of the store. Carved
// extents never overlap and released extents are coalesced with their free
// neighbours so that they can be carved again.
//
// The Store is not safe for concurrent use.
type Store struct {
	capacity uint64
	used     uint64

	// free extents keyed by physical address. the value is the length of the
	// extent as a uint64
	free *treemap.Map

	// carved extents keyed by physical address. the value is the []byte
	// backing the extent
	carved *treemap.Map
}

// NewStore is the preferred method of initialisation for the Store type.
func NewStore(capacity uint64) *Store {
	st := &Store{
		capacity: capacity,
		free:     treemap.NewWith(utils.UInt64Comparator),
		carved:   treemap.NewWith(utils.UInt64Comparator),
	}
	if capacity > 0 {
		st.free.Put(uint64(0), capacity)
	}
	return st
}

// Capacity returns the fixed capacity of the store in bytes.
func (st *Store) Capacity() uint64 {
	return st.capacity
}

// Used returns the number of bytes currently carved from the store.
func (st *Store) Used() uint64 {
	return st.used
}

// Available returns the number of bytes that have not been carved from the
// store. Because of fragmentation it may not be possible to carve a single
// extent of this size.
func (st *Store) Available() uint64 {
	return st.capacity - st.used
}

// Extents returns the number of carved extents.
func (st *Store) Extents() int {
	return st.carved.Size()
}

// Carve a new extent of size bytes from the store. The extent is the first
// free extent in physical address order that is large enough. Returns the
// physical address of the extent and the bytes backing it.
//
// Fails with OutOfPhysicalMemory if the capacity of the store would be
// exceeded or if no free extent is large enough.
func (st *Store) Carve(size uint64) (uint64, []byte, error) {
	if size == 0 {
		return 0, nil, faults.New(faults.InvalidArgument, "carve", 0, 0)
	}

	if st.used+size > st.capacity {
		return 0, nil, faults.New(faults.OutOfPhysicalMemory, "carve", 0, clampSize(size))
	}

	var base uint64
	var found bool

	it := st.free.Iterator()
	for it.Next() {
		if it.Value().(uint64) >= size {
			base = it.Key().(uint64)
			found = true
			break
		}
	}

	if !found {
		return 0, nil, faults.New(faults.OutOfPhysicalMemory, "carve", 0, clampSize(size))
	}

	return base, st.take(base, size), nil
}

// CarveAt carves an extent at a specific physical address. Used when
// restoring a snapshot so that page table entries remain valid. The range must
// be entirely free.
func (st *Store) CarveAt(base uint64, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, faults.New(faults.InvalidArgument, "carve", 0, 0)
	}

	k, v := st.free.Floor(base)
	if k == nil {
		return nil, faults.New(faults.OutOfPhysicalMemory, "carve", 0, clampSize(size))
	}

	fbase := k.(uint64)
	flen := v.(uint64)
	if base+size > fbase+flen {
		return nil, faults.New(faults.OutOfPhysicalMemory, "carve", 0, clampSize(size))
	}

	// split the free extent so that base is the start of a free extent
	if fbase < base {
		st.free.Put(fbase, base-fbase)
		st.free.Put(base, fbase+flen-base)
	}

	return st.take(base, size), nil
}

// take removes size bytes from the start of the free extent at base. The free
// extent must exist and be large enough.
func (st *Store) take(base uint64, size uint64) []byte {
	v, _ := st.free.Get(base)
	flen := v.(uint64)

	st.free.Remove(base)
	if flen > size {
		st.free.Put(base+size, flen-size)
	}

	mem := make([]byte, size)
	st.carved.Put(base, mem)
	st.used += size

	return mem
}

// Release returns the extent at the physical address to the store. The
// address must be the address returned by Carve() or CarveAt().
func (st *Store) Release(base uint64) error {
	v, ok := st.carved.Get(base)
	if !ok {
		return faults.New(faults.InvalidFree, "release", 0, 0)
	}

	size := uint64(len(v.([]byte)))
	st.carved.Remove(base)
	st.used -= size

	// coalesce with the free extent immediately below
	if k, v := st.free.Floor(base); k != nil {
		pbase := k.(uint64)
		plen := v.(uint64)
		if pbase+plen == base {
			st.free.Remove(pbase)
			base = pbase
			size += plen
		}
	}

	// and with the free extent immediately above
	if k, v := st.free.Ceiling(base + size); k != nil {
		nbase := k.(uint64)
		if nbase == base+size {
			st.free.Remove(nbase)
			size += v.(uint64)
		}
	}

	st.free.Put(base, size)

	return nil
}

// Bytes returns the bytes backing the carved extent at the physical address.
func (st *Store) Bytes(base uint64) ([]byte, bool) {
	v, ok := st.carved.Get(base)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// FreeExtents returns the number of free extents. A store with no carved
// extents has exactly one free extent.
func (st *Store) FreeExtents() int {
	return st.free.Size()
}

// clampSize converts a size for use in a fault. Sizes over 4GiB are clamped.
func clampSize(size uint64) uint32 {
	if size > 0xffffffff {
		return 0xffffffff
	}
	return uint32(size)
}
