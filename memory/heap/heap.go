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

package heap

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
	"github.com/xazalea/bellum-sub003/memory/vmm"
)

// Sentinel patterns for errors returned by NewAllocator() and Restore().
const (
	SetupError   = "heap: %v"
	RestoreError = "heap: restore: %v"
)

// shrinking an allocation in place releases the excess to the free list only
// if the excess is at least this many bytes. smaller amounts are kept as slack
// in the allocation
const minimumRelease = 16

// Block is a range of heap memory. Every byte of the heap is in exactly one
// free block or one allocated block.
type Block struct {
	Address uint32 `cbor:"address"`
	Size    uint32 `cbor:"size"`
}

func (b Block) String() string {
	return fmt.Sprintf("%08x (%d bytes)", b.Address, b.Size)
}

func byAddress(a, b Block) int {
	return cmp.Compare(a.Address, b.Address)
}

// End returns the first address after the block.
func (b Block) End() uint64 {
	return uint64(b.Address) + uint64(b.Size)
}

// Allocator is a general purpose heap allocator. It manages a single region of
// committed memory, obtained from the virtual memory manager when the
// Allocator is created. After creation the Allocator does not call the
// virtual memory manager; allocations are sub-ranges of the region's memory.
//
// Allocation is best-fit: the smallest free block large enough for the request
// is used. Free blocks that are next to each other are merged.
//
// The Allocator assumes a single logical caller. It performs no locking and if
// it is to be used from more than one goroutine then the embedder must
// serialise access to it.
type Allocator struct {
	log *logger.Logger
	mgr *vmm.Manager

	base uint32
	size uint32

	// the memory of the region, from the virtual memory manager
	mem []byte

	// free blocks in ascending address order
	free []Block

	// allocated blocks. the key is the address of the block and the value is
	// the size
	allocated map[uint32]uint32

	// called by Free() after a block has been released
	onFree []func(address uint32)

	counters counters
}

type counters struct {
	mallocs  int
	frees    int
	reallocs int
	failures int
}

// NewAllocator is the preferred method of initialisation for the Allocator
// type. A region of size bytes is allocated and committed at the base
// address, with read and write protection. If base is zero the virtual memory
// manager chooses the address.
//
// The size of the heap is the size of the region, which is rounded up to a
// page boundary.
func NewAllocator(mgr *vmm.Manager, base uint32, size uint32, log *logger.Logger) (*Allocator, error) {
	a, err := mgr.Allocate(base, size, memorymap.Commit, memorymap.ReadWrite)
	if err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	mem, ok := mgr.Memory(a)
	if !ok {
		return nil, curated.Errorf(SetupError, fmt.Errorf("region at %08x has no memory", a))
	}

	h := &Allocator{
		log:       log,
		mgr:       mgr,
		base:      a,
		size:      uint32(len(mem)),
		mem:       mem,
		allocated: make(map[uint32]uint32),
	}
	h.free = []Block{{Address: h.base, Size: h.size}}

	h.log.Logf(logger.Allow, "heap", "%d bytes at %08x", h.size, h.base)

	return h, nil
}

// OnFree registers a function to be called whenever an allocation is freed,
// including the free that is part of a Realloc() that moves an allocation.
// The function is called after the block has been returned to the heap.
func (h *Allocator) OnFree(fn func(address uint32)) {
	h.onFree = append(h.onFree, fn)
}

// Base returns the lowest address of the heap.
func (h *Allocator) Base() uint32 {
	return h.base
}

// Size returns the size of the heap in bytes.
func (h *Allocator) Size() uint32 {
	return h.size
}

// Contains returns true if the address is inside the heap.
func (h *Allocator) Contains(address uint32) bool {
	return address >= h.base && uint64(address) < uint64(h.base)+uint64(h.size)
}

// Malloc allocates size bytes from the heap. The size is rounded up to a
// multiple of eight bytes. Returns the address of the allocation.
//
// On failure the returned address is zero and the error is a *faults.Fault
// with the OutOfMemory category, or InvalidArgument if size is zero. A failed
// allocation does not change the heap.
func (h *Allocator) Malloc(size uint32) (uint32, error) {
	if size == 0 {
		h.counters.failures++
		return 0, faults.New(faults.InvalidArgument, "malloc", 0, size)
	}

	asize, ok := memorymap.AlignHeap(size)
	if !ok {
		h.counters.failures++
		return 0, faults.New(faults.OutOfMemory, "malloc", 0, size)
	}

	// best-fit. ties go to the block found first
	best := -1
	for i, b := range h.free {
		if b.Size >= asize && (best == -1 || b.Size < h.free[best].Size) {
			best = i
		}
	}

	if best == -1 {
		h.counters.failures++
		h.log.Logf(logger.Allow, "heap", "out of memory: %d bytes requested, largest free block is %d bytes", asize, h.largestFree())
		return 0, faults.New(faults.OutOfMemory, "malloc", 0, size)
	}

	b := &h.free[best]
	address := b.Address

	// the low part of the block becomes the allocation. the remainder stays
	// in the free list
	if b.Size > asize {
		b.Address += asize
		b.Size -= asize
	} else {
		h.free = slices.Delete(h.free, best, best+1)
	}

	h.allocated[address] = asize
	h.counters.mallocs++

	return address, nil
}

// Free returns the allocation at the address to the heap. The address must be
// an address returned by Malloc() or Realloc() that has not already been
// freed.
//
// Fails with InvalidFree if the address is not allocated. This includes the
// case of a double free.
func (h *Allocator) Free(address uint32) error {
	size, ok := h.allocated[address]
	if !ok {
		h.counters.failures++
		return faults.New(faults.InvalidFree, "free", address, 0)
	}

	delete(h.allocated, address)
	h.release(Block{Address: address, Size: size})
	h.counters.frees++

	for _, fn := range h.onFree {
		fn(address)
	}

	return nil
}

// release adds the block to the free list and merges adjacent free blocks.
func (h *Allocator) release(b Block) {
	h.free = append(h.free, b)
	h.coalesce()
}

// coalesce sorts the free list by address and merges every pair of adjacent
// blocks.
func (h *Allocator) coalesce() {
	slices.SortFunc(h.free, byAddress)

	// after sorting, a single pass merges every run of adjacent blocks
	merged := h.free[:0]
	for _, b := range h.free {
		if n := len(merged); n > 0 && merged[n-1].End() == uint64(b.Address) {
			merged[n-1].Size += b.Size
			continue
		}
		merged = append(merged, b)
	}
	h.free = merged
}

// Realloc changes the size of the allocation at the address. Returns the
// address of the resized allocation, which may be different to the original
// address.
//
// An address of zero is the same as calling Malloc(). A size of zero is the
// same as calling Free() and the returned address is zero.
//
// If the new size fits in the existing allocation then the allocation is
// shrunk in place. Otherwise a new allocation is made, the contents of the
// original allocation are copied to it and the original is freed.
//
// On failure the returned address is zero and the original allocation is
// unchanged.
func (h *Allocator) Realloc(address uint32, size uint32) (uint32, error) {
	if address == 0 {
		return h.Malloc(size)
	}

	if size == 0 {
		return 0, h.Free(address)
	}

	old, ok := h.allocated[address]
	if !ok {
		h.counters.failures++
		return 0, faults.New(faults.InvalidFree, "realloc", address, size)
	}

	asize, ok := memorymap.AlignHeap(size)
	if !ok {
		h.counters.failures++
		return 0, faults.New(faults.OutOfMemory, "realloc", address, size)
	}

	if asize <= old {
		if old-asize >= minimumRelease {
			h.allocated[address] = asize
			h.release(Block{Address: address + asize, Size: old - asize})
		}
		h.counters.reallocs++
		return address, nil
	}

	n, err := h.Malloc(size)
	if err != nil {
		return 0, err
	}

	src := address - h.base
	dst := n - h.base
	copy(h.mem[dst:dst+asize], h.mem[src:src+old])

	// the original address is known to be allocated so this will not fail
	_ = h.Free(address)

	h.counters.reallocs++

	return n, nil
}

// BlockSize returns the size of the allocation at the address. The size is
// the size after alignment and may be larger than the size requested.
func (h *Allocator) BlockSize(address uint32) (uint32, bool) {
	size, ok := h.allocated[address]
	return size, ok
}

// Bytes returns the memory of the allocation at the address. The slice
// refers to heap memory and is not a copy. It is capped to the size of the
// allocation.
func (h *Allocator) Bytes(address uint32) ([]byte, bool) {
	size, ok := h.allocated[address]
	if !ok {
		return nil, false
	}
	o := address - h.base
	return h.mem[o : o+size : o+size], true
}

// FreeBlocks returns a copy of the free list, in ascending address order.
func (h *Allocator) FreeBlocks() []Block {
	return slices.Clone(h.free)
}

// AllocatedBlocks returns every allocated block in ascending address order.
func (h *Allocator) AllocatedBlocks() []Block {
	l := make([]Block, 0, len(h.allocated))
	for a, s := range h.allocated {
		l = append(l, Block{Address: a, Size: s})
	}
	slices.SortFunc(l, byAddress)
	return l
}

func (h *Allocator) largestFree() uint32 {
	var l uint32
	for _, b := range h.free {
		l = max(l, b.Size)
	}
	return l
}
