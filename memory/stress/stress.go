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

package stress

import (
	"fmt"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory"
	"github.com/xazalea/bellum-sub003/random"
)

// FailedError is the sentinel pattern for an invariant that does not hold
// after an operation. The first value is the operation number.
const FailedError = "stress: operation %d: %v"

// Config of a workload.
type Config struct {
	// number of operations to perform
	Operations int

	// largest allocation requested
	MaxSize uint32

	// the seed for the random numbers. if zero the program wide seed is used
	Seed uint64

	// check heap invariants after every operation. the contents of
	// allocations are always checked
	Validate bool
}

// Result of a workload.
type Result struct {
	Seed uint64

	Mallocs     int
	Frees       int
	Reallocs    int
	Objects     int
	Collections int

	// objects freed by the collector
	Collected int

	// allocations that failed because the heap was full
	OutOfMemory int
}

func (r Result) String() string {
	return fmt.Sprintf("seed %d: %d mallocs, %d frees, %d reallocs, %d objects, %d collections (%d collected), %d out of memory",
		r.Seed, r.Mallocs, r.Frees, r.Reallocs, r.Objects, r.Collections, r.Collected, r.OutOfMemory)
}

// allocation is a live heap allocation made by the workload.
type allocation struct {
	address uint32
	size    uint32
}

type workload struct {
	mem *memory.Memory
	cfg Config
	rnd *random.Random
	log *logger.Logger

	op uint64

	allocs  []allocation
	objects []uint32

	res Result
}

// Position implements the random.Position interface.
func (w *workload) Position() uint64 {
	return w.op
}

// Run the workload. The memory must have a heap.
//
// Returns the first invariant that does not hold as a curated error with the
// FailedError pattern.
func Run(mem *memory.Memory, cfg Config) (Result, error) {
	if mem.Heap == nil {
		return Result{}, fmt.Errorf("stress: memory has no heap")
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 256
	}

	w := &workload{
		mem: mem,
		cfg: cfg,
		log: mem.Log,
	}
	w.rnd = random.NewRandom(w)
	if cfg.Seed != 0 {
		w.rnd.BaseSeed = cfg.Seed
	}
	w.res.Seed = w.rnd.BaseSeed

	for w.op = 0; w.op < uint64(cfg.Operations); w.op++ {
		if err := w.step(); err != nil {
			return w.res, curated.Errorf(FailedError, w.op, err)
		}
		if cfg.Validate {
			if err := mem.Heap.Validate(); err != nil {
				return w.res, curated.Errorf(FailedError, w.op, err)
			}
		}
	}

	w.log.Log(logger.Allow, "stress", w.res)

	return w.res, nil
}

// pattern is the value of a byte in an allocation. it depends on the address
// of the allocation so that data copied to the wrong place is detected
func pattern(address uint32, i int) byte {
	return byte(address>>3) ^ byte(i)
}

func (w *workload) fill(a allocation) error {
	mem, ok := w.mem.Heap.Bytes(a.address)
	if !ok {
		return fmt.Errorf("allocation %08x is not in the heap", a.address)
	}
	for i := range a.size {
		mem[i] = pattern(a.address, int(i))
	}
	return nil
}

// check the pattern of the first n bytes of the allocation. the pattern was
// written for the address in the from argument
func (w *workload) check(a allocation, from uint32, n uint32) error {
	mem, ok := w.mem.Heap.Bytes(a.address)
	if !ok {
		return fmt.Errorf("allocation %08x is not in the heap", a.address)
	}
	for i := range n {
		if mem[i] != pattern(from, int(i)) {
			return fmt.Errorf("allocation %08x: corrupted at byte %d", a.address, i)
		}
	}
	return nil
}

func (w *workload) step() error {
	rnd := w.rnd.Rand()

	switch n := rnd.IntN(100); {
	case n < 40:
		return w.malloc(rnd.Uint32N(w.cfg.MaxSize) + 1)
	case n < 65:
		if len(w.allocs) == 0 {
			return nil
		}
		return w.free(rnd.IntN(len(w.allocs)))
	case n < 80:
		if len(w.allocs) == 0 {
			return nil
		}
		return w.realloc(rnd.IntN(len(w.allocs)), rnd.Uint32N(w.cfg.MaxSize*2)+1)
	case n < 92:
		return w.object(rnd.Uint32N(w.cfg.MaxSize)+1, rnd.IntN(2) == 0)
	case n < 96:
		if len(w.objects) > 0 {
			w.mem.GC.RemoveRoot(w.objects[rnd.IntN(len(w.objects))])
		}
		return nil
	default:
		return w.collect()
	}
}

func (w *workload) malloc(size uint32) error {
	address, err := w.mem.Heap.Malloc(size)
	if err != nil {
		if faults.Is(err, faults.OutOfMemory) {
			w.res.OutOfMemory++
			return nil
		}
		return err
	}
	w.res.Mallocs++

	a := allocation{address: address, size: size}
	w.allocs = append(w.allocs, a)
	return w.fill(a)
}

func (w *workload) free(i int) error {
	a := w.allocs[i]
	if err := w.check(a, a.address, a.size); err != nil {
		return err
	}
	if err := w.mem.Heap.Free(a.address); err != nil {
		return err
	}
	w.res.Frees++

	w.allocs[i] = w.allocs[len(w.allocs)-1]
	w.allocs = w.allocs[:len(w.allocs)-1]
	return nil
}

func (w *workload) realloc(i int, size uint32) error {
	a := w.allocs[i]
	if err := w.check(a, a.address, a.size); err != nil {
		return err
	}

	address, err := w.mem.Heap.Realloc(a.address, size)
	if err != nil {
		if faults.Is(err, faults.OutOfMemory) {
			w.res.OutOfMemory++

			// the original allocation must be untouched
			return w.check(a, a.address, a.size)
		}
		return err
	}
	w.res.Reallocs++

	n := allocation{address: address, size: size}
	if err := w.check(n, a.address, min(a.size, size)); err != nil {
		return err
	}
	w.allocs[i] = n
	return w.fill(n)
}

func (w *workload) object(size uint32, root bool) error {
	address, err := w.mem.GC.AllocObject(size)
	if err != nil {
		if faults.Is(err, faults.OutOfMemory) {
			w.res.OutOfMemory++
			return nil
		}
		return err
	}
	w.res.Objects++

	w.objects = append(w.objects, address)
	if root {
		w.mem.GC.AddRoot(address)
	}
	return nil
}

func (w *workload) collect() error {
	w.res.Collections++
	w.res.Collected += w.mem.GC.Collect()

	// forget objects that have been collected. roots that no longer refer to
	// an object are removed so that a new object at the same address is not
	// accidentally rooted
	live := w.objects[:0]
	for _, o := range w.objects {
		if _, ok := w.mem.GC.IsObject(o); ok {
			live = append(live, o)
		} else {
			w.mem.GC.RemoveRoot(o)
		}
	}
	w.objects = live

	// every object must still be allocated in the heap
	for _, o := range w.objects {
		if _, ok := w.mem.Heap.BlockSize(o); !ok {
			return fmt.Errorf("object %08x is not allocated in the heap", o)
		}
	}

	// collection must not touch allocations made directly with the heap
	for _, a := range w.allocs {
		if err := w.check(a, a.address, a.size); err != nil {
			return err
		}
	}

	return nil
}
