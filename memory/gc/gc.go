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

package gc

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/heap"
)

// Tracer returns the addresses referred to by the object at the address. The
// data argument is the memory of the object. Addresses that are not objects
// are ignored by the collector.
type Tracer func(address uint32, data []byte) []uint32

// Option changes how a Collector is created.
type Option func(*Collector)

// WithTracer installs a Tracer. Marking follows the references it returns.
func WithTracer(t Tracer) Option {
	return func(c *Collector) {
		c.tracer = t
	}
}

// object is an entry in the registry.
type object struct {
	size   uint32
	marked bool
}

// Collector is a mark and sweep garbage collector. Objects are allocated from
// the heap given to NewCollector().
//
// The Collector assumes a single logical caller. It performs no locking and if
// it is to be used from more than one goroutine then the embedder must
// serialise access to it.
type Collector struct {
	log  *logger.Logger
	heap *heap.Allocator

	// registry of objects keyed by heap address
	registry map[uint32]*object

	roots map[uint32]struct{}

	tracer Tracer

	// number of completed collections
	cycles int

	last Stats
}

// NewCollector is the preferred method of initialisation for the Collector
// type. The logger may be nil.
func NewCollector(h *heap.Allocator, log *logger.Logger, opts ...Option) *Collector {
	c := &Collector{
		log:      log,
		heap:     h,
		registry: make(map[uint32]*object),
		roots:    make(map[uint32]struct{}),
	}
	for _, o := range opts {
		o(c)
	}

	// an object freed through the heap rather than by a collection is no
	// longer an object. its address may be reused by a plain allocation
	h.OnFree(c.forget)

	return c
}

// forget removes the address from the registry.
func (c *Collector) forget(address uint32) {
	delete(c.registry, address)
}

// AllocObject allocates an object of size bytes from the heap and registers it
// with the collector. The new object is not a root.
//
// On failure the returned address is zero and the error is the error returned
// by the heap.
func (c *Collector) AllocObject(size uint32) (uint32, error) {
	address, err := c.heap.Malloc(size)
	if err != nil {
		return 0, err
	}
	c.registry[address] = &object{size: size}
	return address, nil
}

// AddRoot adds the address to the root set. The address is not checked and
// need not be an object.
func (c *Collector) AddRoot(address uint32) {
	c.roots[address] = struct{}{}
}

// RemoveRoot removes the address from the root set. Removing an address that
// is not a root does nothing.
func (c *Collector) RemoveRoot(address uint32) {
	delete(c.roots, address)
}

// IsRoot returns true if the address is in the root set.
func (c *Collector) IsRoot(address uint32) bool {
	_, ok := c.roots[address]
	return ok
}

// Roots returns the root set in ascending address order.
func (c *Collector) Roots() []uint32 {
	return slices.Sorted(maps.Keys(c.roots))
}

// Objects returns the number of registered objects.
func (c *Collector) Objects() int {
	return len(c.registry)
}

// IsObject returns true if the address is a registered object. The size
// returned is the size requested when the object was allocated.
func (c *Collector) IsObject(address uint32) (uint32, bool) {
	o, ok := c.registry[address]
	if !ok {
		return 0, false
	}
	return o.size, true
}

// Stats describes a single collection.
type Stats struct {
	// the collection number. the first collection is cycle one
	Cycle int

	// number of objects that survived
	Marked int

	// number of objects freed and the bytes requested for them
	Swept      int
	SweptBytes uint64

	Duration  time.Duration
	Timestamp time.Time
}

func (s Stats) String() string {
	return fmt.Sprintf("cycle %d: %d marked, %d swept (%d bytes) in %v", s.Cycle, s.Marked, s.Swept, s.SweptBytes, s.Duration)
}

// LastStats returns the Stats of the most recent collection. The zero value is
// returned if there has been no collection.
func (c *Collector) LastStats() Stats {
	return c.last
}

// Cycles returns the number of collections that have completed.
func (c *Collector) Cycles() int {
	return c.cycles
}

// Collect runs a complete mark and sweep. Returns the number of objects freed.
func (c *Collector) Collect() int {
	start := time.Now()

	marked := c.mark()
	swept, bytes := c.sweep()

	c.cycles++
	c.last = Stats{
		Cycle:      c.cycles,
		Marked:     marked,
		Swept:      swept,
		SweptBytes: bytes,
		Duration:   time.Since(start),
		Timestamp:  start,
	}

	c.log.Log(logger.Allow, "gc", c.last)

	return swept
}

// mark clears every mark and then marks every reachable object. Returns the
// number of objects marked.
func (c *Collector) mark() int {
	for _, o := range c.registry {
		o.marked = false
	}

	var marked int
	var work []uint32

	push := func(address uint32) {
		o, ok := c.registry[address]
		if !ok || o.marked {
			return
		}
		o.marked = true
		marked++
		if c.tracer != nil {
			work = append(work, address)
		}
	}

	for _, r := range c.Roots() {
		push(r)
	}

	for len(work) > 0 {
		address := work[len(work)-1]
		work = work[:len(work)-1]

		data, ok := c.heap.Bytes(address)
		if !ok {
			continue
		}
		for _, ref := range c.tracer(address, data) {
			push(ref)
		}
	}

	return marked
}

// sweep frees every unmarked object. Returns the number of objects freed and
// the number of bytes requested for them.
func (c *Collector) sweep() (int, uint64) {
	var swept int
	var bytes uint64

	// ascending address order keeps the free list operations repeatable
	for _, address := range slices.Sorted(maps.Keys(c.registry)) {
		o := c.registry[address]
		if o.marked {
			continue
		}

		// a successful free removes the object from the registry through
		// forget(). a failed free should not happen but the object is dropped
		// all the same
		if err := c.heap.Free(address); err != nil {
			c.log.Logf(logger.Allow, "gc", "sweep: %v", err)
			delete(c.registry, address)
		} else {
			swept++
			bytes += uint64(o.size)
		}
	}

	return swept, bytes
}
