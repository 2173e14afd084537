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

import "fmt"

// Stats summarises the state of the heap.
type Stats struct {
	Size uint32

	FreeBytes      uint64
	AllocatedBytes uint64
	LargestFree    uint32

	FreeBlocks      int
	AllocatedBlocks int

	// number of calls that succeeded
	Mallocs  int
	Frees    int
	Reallocs int

	// number of calls to Malloc(), Free() or Realloc() that failed
	Failures int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d bytes allocated in %d blocks, %d free blocks (largest %d bytes), %d failures",
		s.AllocatedBytes, s.Size, s.AllocatedBlocks, s.FreeBlocks, s.LargestFree, s.Failures)
}

// Stats returns a summary of the current state of the heap.
func (h *Allocator) Stats() Stats {
	s := Stats{
		Size:            h.size,
		FreeBlocks:      len(h.free),
		AllocatedBlocks: len(h.allocated),
		LargestFree:     h.largestFree(),
		Mallocs:         h.counters.mallocs,
		Frees:           h.counters.frees,
		Reallocs:        h.counters.reallocs,
		Failures:        h.counters.failures,
	}
	for _, b := range h.free {
		s.FreeBytes += uint64(b.Size)
	}
	for _, sz := range h.allocated {
		s.AllocatedBytes += uint64(sz)
	}
	return s
}
