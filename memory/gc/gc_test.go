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

package gc_test

import (
	"encoding/binary"
	"testing"

	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/memory/gc"
	"github.com/xazalea/bellum-sub003/memory/heap"
	"github.com/xazalea/bellum-sub003/memory/vmm"
	"github.com/xazalea/bellum-sub003/test"
)

func newCollector(t *testing.T, opts ...gc.Option) (*gc.Collector, *heap.Allocator) {
	t.Helper()
	mgr, err := vmm.NewManager(vmm.Config{}, nil)
	test.DemandSuccess(t, err)
	h, err := heap.NewAllocator(mgr, 0x10000000, 65536, nil)
	test.DemandSuccess(t, err)
	return gc.NewCollector(h, nil, opts...), h
}

func TestReclaim(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(64)
	test.DemandSuccess(t, err)
	b, err := c.AllocObject(64)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Objects(), 2)

	c.AddRoot(b)
	test.ExpectEquality(t, c.Collect(), 1)
	test.ExpectEquality(t, c.Objects(), 1)

	_, ok := h.BlockSize(a)
	test.ExpectFailure(t, ok)
	_, ok = h.BlockSize(b)
	test.ExpectSuccess(t, ok)

	// the address of the reclaimed object is reused
	n, err := c.AllocObject(64)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, a)

	test.ExpectSuccess(t, h.Validate())
}

func TestRoots(t *testing.T) {
	c, _ := newCollector(t)

	a, err := c.AllocObject(32)
	test.DemandSuccess(t, err)

	c.AddRoot(a)
	test.ExpectSuccess(t, c.IsRoot(a))
	test.ExpectEquality(t, c.Collect(), 0)
	test.ExpectEquality(t, c.Collect(), 0)

	// a root that is not an object is harmless
	c.AddRoot(0x12345678)
	test.ExpectEquality(t, len(c.Roots()), 2)
	test.ExpectEquality(t, c.Collect(), 0)

	c.RemoveRoot(a)
	c.RemoveRoot(a)
	test.ExpectFailure(t, c.IsRoot(a))
	test.ExpectEquality(t, c.Collect(), 1)
	test.ExpectEquality(t, c.Objects(), 0)
}

func TestNoTracing(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(8)
	test.DemandSuccess(t, err)
	b, err := c.AllocObject(8)
	test.DemandSuccess(t, err)

	// a refers to b but without a tracer the reference is not followed
	mem, _ := h.Bytes(a)
	binary.LittleEndian.PutUint32(mem, b)

	c.AddRoot(a)
	test.ExpectEquality(t, c.Collect(), 1)
	_, ok := c.IsObject(b)
	test.ExpectFailure(t, ok)
}

func TestTracing(t *testing.T) {
	c, h := newCollector(t, gc.WithTracer(gc.ScanWords))

	// a chain of three objects and one unreachable object
	a, err := c.AllocObject(8)
	test.DemandSuccess(t, err)
	b, err := c.AllocObject(8)
	test.DemandSuccess(t, err)
	d, err := c.AllocObject(8)
	test.DemandSuccess(t, err)
	u, err := c.AllocObject(8)
	test.DemandSuccess(t, err)

	mem, _ := h.Bytes(a)
	binary.LittleEndian.PutUint32(mem, b)
	mem, _ = h.Bytes(b)
	binary.LittleEndian.PutUint32(mem, d)

	// a cycle back to the start of the chain
	binary.LittleEndian.PutUint32(mem[4:], a)

	c.AddRoot(a)
	test.ExpectEquality(t, c.Collect(), 1)

	for _, o := range []uint32{a, b, d} {
		_, ok := c.IsObject(o)
		test.ExpectSuccess(t, ok, o)
	}
	_, ok := c.IsObject(u)
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, c.LastStats().Marked, 3)
}

func TestStats(t *testing.T) {
	c, _ := newCollector(t)

	test.ExpectEquality(t, c.LastStats().Cycle, 0)

	for range 5 {
		_, err := c.AllocObject(10)
		test.DemandSuccess(t, err)
	}
	c.Collect()

	s := c.LastStats()
	test.ExpectEquality(t, s.Cycle, 1)
	test.ExpectEquality(t, s.Marked, 0)
	test.ExpectEquality(t, s.Swept, 5)
	test.ExpectEquality(t, s.SweptBytes, 50)
	test.ExpectEquality(t, c.Cycles(), 1)
}

func TestAllocFailure(t *testing.T) {
	c, _ := newCollector(t)

	a, err := c.AllocObject(0)
	test.ExpectEquality(t, a, 0)
	test.ExpectSuccess(t, faults.Is(err, faults.InvalidArgument))

	a, err = c.AllocObject(1 << 20)
	test.ExpectEquality(t, a, 0)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfMemory))

	test.ExpectEquality(t, c.Objects(), 0)
}

func TestObjectFreedThroughHeap(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(16)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.Free(a))

	// the object is dropped from the registry as soon as it is freed
	test.ExpectEquality(t, c.Objects(), 0)
	_, ok := c.IsObject(a)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, c.Collect(), 0)
}

func TestAddressReusedByMalloc(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(16)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.Free(a))

	// a plain allocation takes the address of the freed object
	b, err := h.Malloc(16)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, b, a)

	// the collector does not own the block and must not free it
	test.ExpectEquality(t, c.Collect(), 0)
	_, ok := h.BlockSize(b)
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, h.Validate())
}

func TestObjectMovedByRealloc(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(16)
	test.DemandSuccess(t, err)
	_, err = c.AllocObject(16)
	test.DemandSuccess(t, err)

	// growing the object through the heap moves it. the collector no longer
	// tracks the original address and the moved block is not an object
	n, err := h.Realloc(a, 256)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, n != a)
	_, ok := c.IsObject(a)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, c.Objects(), 1)

	test.ExpectEquality(t, c.Collect(), 1)
	_, ok = h.BlockSize(n)
	test.ExpectSuccess(t, ok)
}

func TestSnapshot(t *testing.T) {
	c, h := newCollector(t)

	a, err := c.AllocObject(16)
	test.DemandSuccess(t, err)
	c.AddRoot(a)

	s := c.Snapshot()
	test.DemandEquality(t, len(s.Objects), 1)
	test.ExpectEquality(t, s.Objects[0].Address, a)

	c.RemoveRoot(a)
	test.ExpectEquality(t, c.Collect(), 1)

	// the object is no longer allocated in the heap so the snapshot is
	// refused
	test.ExpectFailure(t, c.Restore(s))

	b, err := h.Malloc(16)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, b, a)

	test.ExpectSuccess(t, c.Restore(s))
	test.ExpectSuccess(t, c.IsRoot(a))
	test.ExpectEquality(t, c.Objects(), 1)
	test.ExpectEquality(t, c.Collect(), 0)
}
