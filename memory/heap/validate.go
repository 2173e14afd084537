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
	"fmt"
	"slices"
)

// Validate checks the invariants of the heap. Every byte of the heap must be
// in exactly one free block or one allocated block, no block may be empty and
// no two free blocks may be next to each other.
//
// Returns nil if the heap is consistent. The heap never becomes inconsistent
// through use of the Allocator's functions; Validate is for tests and for
// checking a heap restored from a snapshot.
func (h *Allocator) Validate() error {
	type tagged struct {
		Block
		free bool
	}

	all := make([]tagged, 0, len(h.free)+len(h.allocated))
	for _, b := range h.free {
		all = append(all, tagged{Block: b, free: true})
	}
	for a, s := range h.allocated {
		all = append(all, tagged{Block: Block{Address: a, Size: s}})
	}

	slices.SortFunc(all, func(a, b tagged) int {
		return byAddress(a.Block, b.Block)
	})

	next := uint64(h.base)
	var sum uint64
	for i, b := range all {
		if b.Size == 0 {
			return fmt.Errorf("heap: empty block at %08x", b.Address)
		}
		if uint64(b.Address) != next {
			if uint64(b.Address) < next {
				return fmt.Errorf("heap: block %s overlaps previous block", b.Block)
			}
			return fmt.Errorf("heap: %d bytes at %08x are unaccounted for", uint64(b.Address)-next, next)
		}
		if i > 0 && b.free && all[i-1].free {
			return fmt.Errorf("heap: free block %s has not been merged with free block %s", b.Block, all[i-1].Block)
		}
		next = b.End()
		sum += uint64(b.Size)
	}

	if next != uint64(h.base)+uint64(h.size) {
		return fmt.Errorf("heap: blocks end at %08x but heap ends at %08x", next, uint64(h.base)+uint64(h.size))
	}

	if sum != uint64(h.size) {
		return fmt.Errorf("heap: blocks total %d bytes but heap is %d bytes", sum, h.size)
	}

	// the free list is kept in address order
	if !slices.IsSortedFunc(h.free, byAddress) {
		return fmt.Errorf("heap: free list is not in address order")
	}

	return nil
}
