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

package heap_test

import (
	"bytes"
	"testing"

	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/memory/heap"
	"github.com/xazalea/bellum-sub003/memory/vmm"
	"github.com/xazalea/bellum-sub003/test"
)

func newHeap(t *testing.T, base uint32, size uint32) (*heap.Allocator, *vmm.Manager) {
	t.Helper()
	mgr, err := vmm.NewManager(vmm.Config{}, nil)
	test.DemandSuccess(t, err)
	h, err := heap.NewAllocator(mgr, base, size, nil)
	test.DemandSuccess(t, err)
	return h, mgr
}

// conservation checks that the free and allocated blocks account for every
// byte of the heap
func conservation(t *testing.T, h *heap.Allocator) {
	t.Helper()
	var sum uint64
	for _, b := range h.FreeBlocks() {
		sum += uint64(b.Size)
	}
	for _, b := range h.AllocatedBlocks() {
		sum += uint64(b.Size)
	}
	test.ExpectEquality(t, sum, uint64(h.Size()))
	test.ExpectSuccess(t, h.Validate())
}

func TestMalloc(t *testing.T) {
	h, _ := newHeap(t, 0x10000000, 4096)
	test.ExpectEquality(t, h.Base(), 0x10000000)
	test.ExpectEquality(t, h.Size(), 4096)

	a, err := h.Malloc(100)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, 0x10000000)

	sz, ok := h.BlockSize(a)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, sz, 104)

	b, err := h.Malloc(1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, a+104)
	test.ExpectEquality(t, b%8, 0)

	conservation(t, h)

	_, err = h.Malloc(0)
	test.ExpectSuccess(t, faults.Is(err, faults.InvalidArgument))
}

func TestOutOfMemory(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(4096)
	test.DemandSuccess(t, err)

	b, err := h.Malloc(8)
	test.ExpectEquality(t, b, 0)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfMemory))
	conservation(t, h)

	// the heap is still usable after running out of memory
	test.DemandSuccess(t, h.Free(a))
	_, err = h.Malloc(8)
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, h.Stats().Failures, 1)
}

func TestBestFit(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	// create free blocks of 64, 16 and 32 bytes, in that order, separated by
	// allocated blocks
	sizes := []uint32{64, 8, 16, 8, 32, 8}
	addr := make([]uint32, len(sizes))
	for i, s := range sizes {
		var err error
		addr[i], err = h.Malloc(s)
		test.DemandSuccess(t, err)
	}
	test.DemandSuccess(t, h.Free(addr[0]))
	test.DemandSuccess(t, h.Free(addr[2]))
	test.DemandSuccess(t, h.Free(addr[4]))

	free := h.FreeBlocks()
	test.DemandEquality(t, len(free), 4)
	test.ExpectEquality(t, free[0].Size, 64)
	test.ExpectEquality(t, free[1].Size, 16)
	test.ExpectEquality(t, free[2].Size, 32)

	// 20 bytes is aligned to 24 bytes. the 32 byte block is the smallest
	// block that is large enough
	a, err := h.Malloc(20)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, addr[4])

	free = h.FreeBlocks()
	test.DemandEquality(t, len(free), 4)
	test.ExpectEquality(t, free[2].Address, addr[4]+24)
	test.ExpectEquality(t, free[2].Size, 8)

	conservation(t, h)
}

func TestBestFitTie(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	// two free blocks of 32 bytes. the first in the list wins
	sizes := []uint32{32, 8, 32, 8}
	addr := make([]uint32, len(sizes))
	for i, s := range sizes {
		var err error
		addr[i], err = h.Malloc(s)
		test.DemandSuccess(t, err)
	}
	test.DemandSuccess(t, h.Free(addr[2]))
	test.DemandSuccess(t, h.Free(addr[0]))

	a, err := h.Malloc(32)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, addr[0])
}

func TestCoalescing(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(16)
	test.DemandSuccess(t, err)
	b, err := h.Malloc(16)
	test.DemandSuccess(t, err)
	c, err := h.Malloc(16)
	test.DemandSuccess(t, err)

	// use the rest of the heap so that the free list is empty
	_, err = h.Malloc(4096 - 48)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(h.FreeBlocks()), 0)

	test.DemandSuccess(t, h.Free(b))
	test.DemandSuccess(t, h.Free(a))
	test.DemandSuccess(t, h.Free(c))

	free := h.FreeBlocks()
	test.DemandEquality(t, len(free), 1)
	test.ExpectEquality(t, free[0].Address, a)
	test.ExpectEquality(t, free[0].Size, 48)

	conservation(t, h)
}

func TestDoubleFree(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(32)
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, h.Free(a))
	err = h.Free(a)
	test.ExpectSuccess(t, faults.Is(err, faults.InvalidFree))

	// an address that was never allocated
	err = h.Free(a + 8)
	test.ExpectSuccess(t, faults.Is(err, faults.InvalidFree))

	conservation(t, h)
}

func TestReallocGrowth(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(16)
	test.DemandSuccess(t, err)

	// a second allocation prevents growth in place
	_, err = h.Malloc(16)
	test.DemandSuccess(t, err)

	pattern := []byte("0123456789abcdef")
	mem, ok := h.Bytes(a)
	test.DemandSuccess(t, ok)
	copy(mem, pattern)

	b, err := h.Realloc(a, 128)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, b, a)

	mem, ok = h.Bytes(b)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, len(mem), 128)
	test.ExpectSuccess(t, bytes.Equal(mem[:16], pattern))

	// the original allocation has been freed
	_, ok = h.BlockSize(a)
	test.ExpectFailure(t, ok)

	conservation(t, h)
}

func TestReallocShrink(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(128)
	test.DemandSuccess(t, err)
	_, err = h.Malloc(8)
	test.DemandSuccess(t, err)

	// excess of less than 16 bytes is kept
	b, err := h.Realloc(a, 120)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, a)
	sz, _ := h.BlockSize(a)
	test.ExpectEquality(t, sz, 128)

	// excess of 16 bytes or more is released
	b, err = h.Realloc(a, 64)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, a)
	sz, _ = h.BlockSize(a)
	test.ExpectEquality(t, sz, 64)

	free := h.FreeBlocks()
	test.DemandEquality(t, len(free), 2)
	test.ExpectEquality(t, free[0].Address, a+64)
	test.ExpectEquality(t, free[0].Size, 64)

	conservation(t, h)
}

func TestReallocEdgeCases(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	// address zero is malloc
	a, err := h.Realloc(0, 32)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, a, 0)

	// size zero is free
	b, err := h.Realloc(a, 0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b, 0)
	_, ok := h.BlockSize(a)
	test.ExpectFailure(t, ok)

	// not allocated
	_, err = h.Realloc(a, 32)
	test.ExpectSuccess(t, faults.Is(err, faults.InvalidFree))

	// growth that can not be satisfied leaves the original allocation intact
	a, err = h.Malloc(2048)
	test.DemandSuccess(t, err)
	mem, _ := h.Bytes(a)
	mem[0] = 0x55
	b, err = h.Realloc(a, 4000)
	test.ExpectEquality(t, b, 0)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfMemory))
	sz, ok := h.BlockSize(a)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, sz, 2048)
	mem, _ = h.Bytes(a)
	test.ExpectEquality(t, mem[0], 0x55)

	conservation(t, h)
}

func TestHeapThroughVMM(t *testing.T) {
	h, mgr := newHeap(t, 0x10000000, 16<<20)

	a, err := h.Malloc(100)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, h.Contains(a))

	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	n, err := mgr.Write(a, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 100)

	// the write through the virtual memory manager is visible in heap memory
	mem, ok := h.Bytes(a)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, bytes.Equal(mem[:100], data))

	test.DemandSuccess(t, h.Free(a))
	b, err := h.Malloc(100)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, a)
}

func TestHeapSetupFailure(t *testing.T) {
	mgr, err := vmm.NewManager(vmm.Config{PhysicalCapacity: 4096}, nil)
	test.DemandSuccess(t, err)

	_, err = heap.NewAllocator(mgr, 0, 8192, nil)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfPhysicalMemory))
}

func TestStats(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(100)
	test.DemandSuccess(t, err)
	_, err = h.Malloc(200)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.Free(a))

	s := h.Stats()
	test.ExpectEquality(t, s.AllocatedBytes, 200)
	test.ExpectEquality(t, s.FreeBytes, 4096-200)
	test.ExpectEquality(t, s.AllocatedBlocks, 1)
	test.ExpectEquality(t, s.FreeBlocks, 2)
	test.ExpectEquality(t, s.LargestFree, 4096-304)
	test.ExpectEquality(t, s.Mallocs, 2)
	test.ExpectEquality(t, s.Frees, 1)
}

func TestReallocStats(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	a, err := h.Malloc(100)
	test.DemandSuccess(t, err)

	// too large. the failed call is not counted as a realloc
	_, err = h.Realloc(a, 8192)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, h.Stats().Reallocs, 0)
	test.ExpectEquality(t, h.Stats().Failures, 1)

	// in place
	a, err = h.Realloc(a, 50)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, h.Stats().Reallocs, 1)

	// moved
	_, err = h.Malloc(16)
	test.DemandSuccess(t, err)
	_, err = h.Realloc(a, 200)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, h.Stats().Reallocs, 2)
	test.ExpectEquality(t, h.Stats().Failures, 1)
}

func TestOnFree(t *testing.T) {
	h, _ := newHeap(t, 0, 4096)

	var freed []uint32
	h.OnFree(func(address uint32) {
		freed = append(freed, address)
	})

	a, err := h.Malloc(16)
	test.DemandSuccess(t, err)
	b, err := h.Malloc(16)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, h.Free(a))
	test.DemandEquality(t, len(freed), 1)
	test.ExpectEquality(t, freed[0], a)

	// a failed free does not call the function
	test.ExpectFailure(t, h.Free(a))
	test.ExpectEquality(t, len(freed), 1)

	// growing b moves it and frees the original address
	c, err := h.Realloc(b, 64)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, c, b)
	test.DemandEquality(t, len(freed), 2)
	test.ExpectEquality(t, freed[1], b)
}

func TestSnapshot(t *testing.T) {
	h, mgr := newHeap(t, 0, 4096)

	a, err := h.Malloc(64)
	test.DemandSuccess(t, err)

	vs := mgr.Snapshot()
	hs := h.Snapshot()

	_, err = h.Malloc(64)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.Free(a))

	test.DemandSuccess(t, mgr.Restore(vs))
	test.DemandSuccess(t, h.Restore(hs))

	sz, ok := h.BlockSize(a)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, sz, 64)
	test.ExpectEquality(t, len(h.AllocatedBlocks()), 1)
	conservation(t, h)

	// an inconsistent snapshot is refused
	hs.Free = nil
	test.ExpectFailure(t, h.Restore(hs))
}
